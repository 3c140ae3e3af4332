package events

import "time"

// Audit event codes emitted by the assistant.
const (
	EventDocumentIndexed = "DOCUMENT_INDEXED"
	EventAnswerGenerated = "ANSWER_GENERATED"
	EventSessionDeleted  = "SESSION_DELETED"
)

// Event defines the contract for all audit events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_INDEXED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
