package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocumentStatusPending = "pending"
	DocumentStatusIndexed = "indexed"
	DocumentStatusFailed  = "failed"
)

type Document struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string
	ContentType string // "text" | "markdown" | "csv"
	Content     string
	SizeBytes   int64
	ChunkCount  int
	Status      string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
