package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is a process-local store with TTL eviction
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryStore{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]float32, error) {
	if x, found := s.cache.Get(key); found {
		return x.([]float32), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Put(ctx context.Context, key string, values []float32) error {
	s.cache.Set(key, values, gocache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}
