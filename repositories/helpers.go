package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/sports-meet/models"
	"github.com/Dosada05/sports-meet/storage"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrMalformedDocument = errors.New("document contains malformed JSON")
)

// Keys names the logical documents inside a DocumentStore.
type Keys struct {
	Aggregate     string
	ClassMapping  string
	GamesPrefix   string
	PlayersPrefix string
	BackupPrefix  string
}

func DefaultKeys() Keys {
	return Keys{
		Aggregate:     "sports_data.json",
		ClassMapping:  "h2c.json",
		GamesPrefix:   "games/",
		PlayersPrefix: "players/",
		BackupPrefix:  "backups/",
	}
}

func readDocument(ctx context.Context, store storage.DocumentStore, key string, dst any) error {
	data, err := store.Get(ctx, key)
	if err != nil {
		return wrapNotFound(err, key)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedDocument, key, err)
	}
	return nil
}

func writeDocument(ctx context.Context, store storage.DocumentStore, key string, v any) error {
	data, err := models.EncodeDocument(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Put(ctx, key, data)
}

// fragmentKeys lists prefix and keeps only direct ".json" children.
func fragmentKeys(ctx context.Context, store storage.DocumentStore, prefix string) ([]string, error) {
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		rest := strings.TrimPrefix(k, prefix)
		if strings.Contains(rest, "/") || !strings.HasSuffix(rest, ".json") || rest == ".json" {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

func wrapNotFound(err error, key string) error {
	if errors.Is(err, storage.ErrDocumentNotFound) {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, key)
	}
	return err
}
