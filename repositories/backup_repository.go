package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Dosada05/sports-meet/storage"
)

// backupTimeLayout is fixed width so lexical order of ids equals chronological order.
const backupTimeLayout = "20060102T150405.000000000Z"

type Backup struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

type BackupRepository interface {
	Create(ctx context.Context, source string, data []byte, at time.Time) (*Backup, error)
	List(ctx context.Context) ([]Backup, error)
	Get(ctx context.Context, id string) ([]byte, error)
	Prune(ctx context.Context, keep int) ([]string, error)
}

type documentBackupRepository struct {
	store  storage.DocumentStore
	prefix string
}

func NewBackupRepository(store storage.DocumentStore, keys Keys) BackupRepository {
	return &documentBackupRepository{store: store, prefix: keys.BackupPrefix}
}

// Create stores data as "<prefix><source stem>-<UTC timestamp>.json".
func (r *documentBackupRepository) Create(ctx context.Context, source string, data []byte, at time.Time) (*Backup, error) {
	at = at.UTC()
	id := storage.Stem(source) + "-" + at.Format(backupTimeLayout)
	key := r.prefix + id + ".json"
	if err := r.store.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("write backup %s: %w", key, err)
	}
	return &Backup{ID: id, Key: key, CreatedAt: at}, nil
}

// List returns backups newest first.
func (r *documentBackupRepository) List(ctx context.Context) ([]Backup, error) {
	keys, err := fragmentKeys(ctx, r.store, r.prefix)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	backups := make([]Backup, 0, len(keys))
	for _, key := range keys {
		id := storage.Stem(key)
		b := Backup{ID: id, Key: key}
		if i := strings.LastIndex(id, "-"); i >= 0 {
			if ts, err := time.Parse(backupTimeLayout, id[i+1:]); err == nil {
				b.CreatedAt = ts
			}
		}
		backups = append(backups, b)
	}
	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].CreatedAt.After(backups[j].CreatedAt)
		}
		return backups[i].ID > backups[j].ID
	})
	return backups, nil
}

func (r *documentBackupRepository) Get(ctx context.Context, id string) ([]byte, error) {
	key := r.prefix + id + ".json"
	data, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, wrapNotFound(err, key)
	}
	return data, nil
}

// Prune deletes all but the newest keep backups and returns the removed ids.
// keep <= 0 disables pruning.
func (r *documentBackupRepository) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	backups, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(backups) <= keep {
		return nil, nil
	}
	removed := make([]string, 0, len(backups)-keep)
	for _, b := range backups[keep:] {
		if err := r.store.Delete(ctx, b.Key); err != nil {
			return removed, fmt.Errorf("delete backup %s: %w", b.ID, err)
		}
		removed = append(removed, b.ID)
	}
	return removed, nil
}
