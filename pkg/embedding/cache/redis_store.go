package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares one embedding cache across instances. Entries carry the
// same checksummed envelope as the file store so a corrupted value is
// reported as ErrCorrupt instead of a bad vector.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "embedding:",
		ttl:    ttl,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]float32, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, ErrCorrupt
	}
	if err := e.verify(); err != nil {
		return nil, err
	}
	return e.Values, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, values []float32) error {
	raw, err := json.Marshal(entry{Key: key, Checksum: vectorChecksum(values), Values: values})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
