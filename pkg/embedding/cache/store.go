package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"hash/fnv"
	"math"
)

var (
	// ErrNotFound signals a cache miss
	ErrNotFound = errors.New("embedding not cached")
	// ErrCorrupt signals a cached entry whose checksum no longer matches
	ErrCorrupt = errors.New("cached embedding corrupt")
)

// Store persists embedding vectors keyed by content hash
type Store interface {
	Get(ctx context.Context, key string) ([]float32, error)
	Put(ctx context.Context, key string, values []float32) error
	Delete(ctx context.Context, key string) error
}

// entry is the persisted envelope for one cached vector
type entry struct {
	Key      string    `json:"key"`
	Checksum uint64    `json:"checksum"`
	Values   []float32 `json:"values,omitempty"`
	Deleted  bool      `json:"deleted,omitempty"`
}

// vectorChecksum hashes the raw float bits so storage corruption surfaces on read
func vectorChecksum(values []float32) uint64 {
	h := fnv.New64a()
	var buf [4]byte
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		h.Write(buf[:])
	}
	return h.Sum64()
}

func (e *entry) verify() error {
	if vectorChecksum(e.Values) != e.Checksum {
		return ErrCorrupt
	}
	return nil
}
