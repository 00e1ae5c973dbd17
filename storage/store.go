package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidKey       = errors.New("invalid document key")
)

// DocumentStore persists whole JSON documents under slash-separated logical keys
// such as "sports_data.json" or "players/10001.json".
type DocumentStore interface {
	// Get returns ErrDocumentNotFound when key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the document at key.
	Put(ctx context.Context, key string, data []byte) error

	Delete(ctx context.Context, key string) error

	// List returns the keys starting with prefix, sorted ascending.
	List(ctx context.Context, prefix string) ([]string, error)

	Close() error
}

// CleanKey validates a logical key and returns its canonical form.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return path.Clean(key), nil
}

// Stem returns the last path element of key without its extension: "players/10001.json" -> "10001".
func Stem(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base))
}
