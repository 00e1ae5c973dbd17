package repositories

import (
	"context"

	"github.com/Dosada05/sports-meet/models"
	"github.com/Dosada05/sports-meet/storage"
)

// FragmentRepository reads and writes the independently authored fragments:
// one schedule file per day, one roster file per event and the class mapping.
type FragmentRepository interface {
	ListScheduleKeys(ctx context.Context) ([]string, error)
	GetSchedule(ctx context.Context, key string) (models.ScheduleDay, error)
	PutSchedule(ctx context.Context, stem string, day models.ScheduleDay) error

	ListRosterKeys(ctx context.Context) ([]string, error)
	GetRoster(ctx context.Context, key string) (models.PlayerList, error)
	PutRoster(ctx context.Context, stem string, roster models.PlayerList) error

	GetClassMapping(ctx context.Context) (models.ClassMapping, error)
	PutClassMapping(ctx context.Context, mapping models.ClassMapping) error

	ScheduleKey(stem string) string
	RosterKey(stem string) string
	ClassMappingKey() string
}

type documentFragmentRepository struct {
	store storage.DocumentStore
	keys  Keys
}

func NewFragmentRepository(store storage.DocumentStore, keys Keys) FragmentRepository {
	return &documentFragmentRepository{store: store, keys: keys}
}

func (r *documentFragmentRepository) ScheduleKey(stem string) string {
	return r.keys.GamesPrefix + stem + ".json"
}

func (r *documentFragmentRepository) RosterKey(stem string) string {
	return r.keys.PlayersPrefix + stem + ".json"
}

func (r *documentFragmentRepository) ClassMappingKey() string {
	return r.keys.ClassMapping
}

func (r *documentFragmentRepository) ListScheduleKeys(ctx context.Context) ([]string, error) {
	return fragmentKeys(ctx, r.store, r.keys.GamesPrefix)
}

func (r *documentFragmentRepository) GetSchedule(ctx context.Context, key string) (models.ScheduleDay, error) {
	var day models.ScheduleDay
	if err := readDocument(ctx, r.store, key, &day); err != nil {
		return nil, err
	}
	return day, nil
}

func (r *documentFragmentRepository) PutSchedule(ctx context.Context, stem string, day models.ScheduleDay) error {
	return writeDocument(ctx, r.store, r.ScheduleKey(stem), day)
}

func (r *documentFragmentRepository) ListRosterKeys(ctx context.Context) ([]string, error) {
	return fragmentKeys(ctx, r.store, r.keys.PlayersPrefix)
}

func (r *documentFragmentRepository) GetRoster(ctx context.Context, key string) (models.PlayerList, error) {
	var roster models.PlayerList
	if err := readDocument(ctx, r.store, key, &roster); err != nil {
		return models.PlayerList{}, err
	}
	return roster, nil
}

func (r *documentFragmentRepository) PutRoster(ctx context.Context, stem string, roster models.PlayerList) error {
	return writeDocument(ctx, r.store, r.RosterKey(stem), roster)
}

func (r *documentFragmentRepository) GetClassMapping(ctx context.Context) (models.ClassMapping, error) {
	mapping := models.ClassMapping{}
	if err := readDocument(ctx, r.store, r.keys.ClassMapping, &mapping); err != nil {
		return nil, err
	}
	if mapping == nil {
		mapping = models.ClassMapping{}
	}
	return mapping, nil
}

func (r *documentFragmentRepository) PutClassMapping(ctx context.Context, mapping models.ClassMapping) error {
	return writeDocument(ctx, r.store, r.keys.ClassMapping, mapping)
}
