package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore keeps documents in the "documents" table created by db.Migrate.
func NewPostgresStore(db *sql.DB) DocumentStore {
	return &postgresStore{db: db}
}

func (s *postgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	query := `SELECT body FROM documents WHERE key = $1`

	var body []byte
	err = s.db.QueryRowContext(ctx, query, clean).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, key)
		}
		return nil, fmt.Errorf("select document %s: %w", key, err)
	}
	return body, nil
}

func (s *postgresStore) Put(ctx context.Context, key string, data []byte) error {
	clean, err := CleanKey(key)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO documents (key, body, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`

	if _, err := s.db.ExecContext(ctx, query, clean, data); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("upsert document %s: %s (%s): %w", key, pqErr.Message, pqErr.Code, err)
		}
		return fmt.Errorf("upsert document %s: %w", key, err)
	}
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, key string) error {
	clean, err := CleanKey(key)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = $1`, clean)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", key, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, key)
	}
	return nil
}

func (s *postgresStore) List(ctx context.Context, prefix string) ([]string, error) {
	query := `SELECT key FROM documents WHERE key LIKE $1 ESCAPE '\' ORDER BY key ASC`

	rows, err := s.db.QueryContext(ctx, query, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("list documents %q: %w", prefix, err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}

// likePrefix escapes LIKE wildcards in prefix and appends "%".
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
