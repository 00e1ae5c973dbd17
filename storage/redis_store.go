package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore keeps each document as a plain string value under prefix+key, without TTL.
func NewRedisStore(client *redis.Client, prefix string) DocumentStore {
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) redisKey(key string) (string, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return s.prefix + clean, nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	rk, err := s.redisKey(key)
	if err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, rk).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, key)
		}
		return nil, fmt.Errorf("redis get %s: %w", rk, err)
	}
	return data, nil
}

func (s *redisStore) Put(ctx context.Context, key string, data []byte) error {
	rk, err := s.redisKey(key)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, rk, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", rk, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	rk, err := s.redisKey(key)
	if err != nil {
		return err
	}
	n, err := s.client.Del(ctx, rk).Result()
	if err != nil {
		return fmt.Errorf("redis del %s: %w", rk, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, key)
	}
	return nil
}

func (s *redisStore) List(ctx context.Context, prefix string) ([]string, error) {
	pattern := escapeGlob(s.prefix+prefix) + "*"

	keys := make([]string, 0)
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan %s: %w", pattern, err)
	}
	return uniqueSorted(keys), nil
}

// uniqueSorted sorts keys and drops repeats; SCAN may return a key more than once.
func uniqueSorted(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
