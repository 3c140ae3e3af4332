package entity

import (
	"time"

	"banking-assistant-be/pkg/store"

	"github.com/google/uuid"
)

type ChatTurn struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatSessionId uuid.UUID `gorm:"type:uuid;index"`
	Role          string
	Content       string
	Confidence    float64
	Tier          string
	Escalated     bool
	Sources       []store.SourceRef
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
