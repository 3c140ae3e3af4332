package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"banking-assistant-be/pkg/embedding"
)

// CachingProvider wraps an EmbeddingProvider with a content-addressed cache.
// Lookups are keyed by a hash of the normalized text, concurrent misses for
// the same key collapse into a single provider call, and provider failures
// are returned to every waiter but never cached.
type CachingProvider struct {
	inner  embedding.EmbeddingProvider
	store  Store
	flight singleflight.Group
	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ embedding.EmbeddingProvider = (*CachingProvider)(nil)

func NewCachingProvider(inner embedding.EmbeddingProvider, store Store) *CachingProvider {
	return &CachingProvider{
		inner: inner,
		store: store,
	}
}

// Key derives the cache key for a text and task type. Text is lowercased and
// whitespace-collapsed before hashing so trivially different copies of the
// same content share one entry. The task type is part of the key because
// providers may embed queries and documents differently.
func Key(text string, taskType string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	sum := sha256.Sum256([]byte(taskType + "\x00" + normalized))
	return hex.EncodeToString(sum[:])
}

func (p *CachingProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	key := Key(text, taskType)

	values, err := p.store.Get(ctx, key)
	if err == nil {
		p.hits.Add(1)
		return response(values), nil
	}
	switch {
	case errors.Is(err, ErrNotFound):
	case errors.Is(err, ErrCorrupt):
		log.Printf("[ERROR] embedding cache: corrupt entry %s, recomputing", shortKey(key))
		if delErr := p.store.Delete(ctx, key); delErr != nil {
			log.Printf("[ERROR] embedding cache: drop corrupt entry: %v", delErr)
		}
	default:
		log.Printf("[ERROR] embedding cache: lookup %s: %v", shortKey(key), err)
	}

	p.misses.Add(1)

	v, err, shared := p.flight.Do(key, func() (interface{}, error) {
		res, err := p.inner.Generate(ctx, text, taskType)
		if err != nil {
			return nil, err
		}
		generated := res.Embedding.Values
		// A failed write only costs a recompute later
		if putErr := p.store.Put(ctx, key, generated); putErr != nil {
			log.Printf("[ERROR] embedding cache: store %s: %v", shortKey(key), putErr)
		}
		return generated, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Printf("[DEBUG] embedding cache: coalesced concurrent embed for %s", shortKey(key))
	}
	return response(v.([]float32)), nil
}

// Invalidate drops the cached vector for a text, if any
func (p *CachingProvider) Invalidate(ctx context.Context, text string, taskType string) error {
	return p.store.Delete(ctx, Key(text, taskType))
}

// Stats returns cumulative hit and miss counts
func (p *CachingProvider) Stats() (hits, misses uint64) {
	return p.hits.Load(), p.misses.Load()
}

// response hands each caller its own copy so cached vectors cannot be
// mutated through the returned slice
func response(values []float32) *embedding.EmbeddingResponse {
	out := make([]float32, len(values))
	copy(out, values)
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: out},
	}
}

func shortKey(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}
