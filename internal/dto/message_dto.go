package dto

import (
	"github.com/google/uuid"
)

// PublishIngestDocumentMessage is the payload handed to the ingest consumer
type PublishIngestDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
