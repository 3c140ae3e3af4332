package vectorindex

import (
	"context"

	"banking-assistant-be/pkg/store"
)

// Index answers nearest-neighbour queries over chunk embeddings and returns
// passages already hydrated with their source document metadata. Results come
// back sorted by similarity, best first, with scores in [0, 1] for normalized
// vectors.
type Index interface {
	Search(ctx context.Context, vector []float32, topK int, minScore float64) ([]store.Passage, error)
}
