package contract

import (
	"context"

	"banking-assistant-be/internal/entity"
	"banking-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredDocumentChunk carries a chunk together with its cosine similarity
// against the query vector, so callers can gate on retrieval confidence.
type ScoredDocumentChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64
}

type DocumentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	Update(ctx context.Context, chunk *entity.DocumentChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredDocumentChunk, error)
}
