package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentChunk struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentId     uuid.UUID `gorm:"type:uuid;index"`
	ChunkIndex     int
	Content        string
	TokenCount     int
	Kind           string // "text" | "table"
	TableId        string
	TableHeader    string
	RowStart       int
	RowEnd         int
	Degraded       bool
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
