package repositories

import (
	"context"

	"github.com/Dosada05/sports-meet/models"
	"github.com/Dosada05/sports-meet/storage"
)

type AggregateRepository interface {
	Get(ctx context.Context) (*models.AggregateDocument, error)
	GetRaw(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, doc *models.AggregateDocument) error
	PutRaw(ctx context.Context, data []byte) error
	Key() string
}

type documentAggregateRepository struct {
	store storage.DocumentStore
	key   string
}

func NewAggregateRepository(store storage.DocumentStore, keys Keys) AggregateRepository {
	return &documentAggregateRepository{store: store, key: keys.Aggregate}
}

func (r *documentAggregateRepository) Key() string {
	return r.key
}

func (r *documentAggregateRepository) Get(ctx context.Context) (*models.AggregateDocument, error) {
	doc := models.NewAggregateDocument()
	if err := readDocument(ctx, r.store, r.key, doc); err != nil {
		return nil, err
	}
	if doc.Games.ClassMapping == nil {
		doc.Games.ClassMapping = models.ClassMapping{}
	}
	return doc, nil
}

// GetRaw returns the stored bytes untouched, for backups.
func (r *documentAggregateRepository) GetRaw(ctx context.Context) ([]byte, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, wrapNotFound(err, r.key)
	}
	return data, nil
}

func (r *documentAggregateRepository) Put(ctx context.Context, doc *models.AggregateDocument) error {
	return writeDocument(ctx, r.store, r.key, doc)
}

func (r *documentAggregateRepository) PutRaw(ctx context.Context, data []byte) error {
	return r.store.Put(ctx, r.key, data)
}
