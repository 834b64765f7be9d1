package blacklist

import (
	"context"
	"sync"
	"time"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]time.Time)}
}

func (r *MemoryRepository) Add(_ context.Context, token string, expiresAt time.Time) error {
	key := HashToken(token)

	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.entries[key]; !ok || expiresAt.After(cur) {
		r.entries[key] = expiresAt
	}
	return nil
}

func (r *MemoryRepository) IsBlacklisted(_ context.Context, token string, now time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exp, ok := r.entries[HashToken(token)]
	return ok && exp.After(now), nil
}

func (r *MemoryRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for k, exp := range r.entries {
		if !exp.After(now) {
			delete(r.entries, k)
			n++
		}
	}
	return n, nil
}

// Len is the number of stored entries, expired or not.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
