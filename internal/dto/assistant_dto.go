package dto

import (
	"time"

	"github.com/google/uuid"
)

type AskRequest struct {
	SessionId      uuid.UUID `json:"session_id" validate:"required"`
	Query          string    `json:"query" validate:"required"`
	TopK           int       `json:"top_k,omitempty" validate:"omitempty,min=1,max=20"`
	ScoreThreshold *float64  `json:"score_threshold,omitempty" validate:"omitempty,min=0,max=1"`
}

// SourceDTO points at the chunk an answer sentence was grounded on
type SourceDTO struct {
	DocumentId   uuid.UUID `json:"document_id"`
	DocumentName string    `json:"document_name"`
	ChunkId      uuid.UUID `json:"chunk_id"`
	Score        float64   `json:"score"`
}

type AskResponse struct {
	SessionId  uuid.UUID   `json:"session_id"`
	Answer     string      `json:"answer"`
	Sources    []SourceDTO `json:"sources"`
	Confidence float64     `json:"confidence"`
	TierUsed   string      `json:"tier_used"`
	Escalated  bool        `json:"escalated,omitempty"`
	Grounded   bool        `json:"grounded"` // false when the fallback answer was returned
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetHistoryResponse struct {
	Id        uuid.UUID   `json:"id"`
	Role      string      `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
	Sources   []SourceDTO `json:"sources,omitempty"`
}
