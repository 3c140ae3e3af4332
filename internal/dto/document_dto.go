package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentRequest struct {
	Name    string `json:"name" validate:"required"`
	Mime    string `json:"mime" validate:"omitempty,oneof=text/plain text/markdown text/csv"`
	Content string `json:"content" validate:"required"`
}

type UploadDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowDocumentResponse struct {
	Id         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Mime       string     `json:"mime"`
	Status     string     `json:"status"`
	ChunkCount int        `json:"chunk_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// DocumentStatsResponse summarizes the loaded knowledge base
type DocumentStatsResponse struct {
	DocumentCount int            `json:"document_count"`
	ChunkCount    int            `json:"chunk_count"`
	TableChunks   int            `json:"table_chunks"`
	ByStatus      map[string]int `json:"by_status"`
}
