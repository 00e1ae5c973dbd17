package storage

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Locker serializes writers per logical key. Waiting honours ctx cancellation.
type Locker struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

func NewLocker() *Locker {
	return &Locker{sems: make(map[string]*semaphore.Weighted)}
}

func (l *Locker) sem(key string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sems[key]
	if !ok {
		s = semaphore.NewWeighted(1)
		l.sems[key] = s
	}
	return s
}

// Lock blocks until key is free and returns the matching unlock function.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	s := l.sem(key)
	if err := s.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for write lock on %s: %w", key, err)
	}
	var once sync.Once
	return func() { once.Do(func() { s.Release(1) }) }, nil
}
