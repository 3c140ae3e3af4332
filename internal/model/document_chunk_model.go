package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ChunkIndex     int             `gorm:"default:0"` // 0-based index for ordering
	Content        string          `gorm:"type:text"`
	TokenCount     int             `gorm:"default:0"`
	Kind           string          `gorm:"type:varchar(20);not null;default:'text'"`
	TableId        string          `gorm:"type:varchar(64);index"`
	TableHeader    string          `gorm:"type:text"`
	RowStart       int             `gorm:"default:0"`
	RowEnd         int             `gorm:"default:0"`
	Degraded       bool            `gorm:"default:false"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // Gemini text-embedding-004 uses 768 dimensions
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
