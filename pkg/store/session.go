package store

import "time"

// Passage is a retrieved chunk hydrated with its source document metadata
type Passage struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Content      string  `json:"content"`
	Score        float32 `json:"score"`
	Kind         string  `json:"kind"` // "text" | "table"
	TableID      string  `json:"table_id,omitempty"`
	TableHeader  string  `json:"table_header,omitempty"`
	RowStart     int     `json:"row_start,omitempty"`
	RowEnd       int     `json:"row_end,omitempty"`
	Degraded     bool    `json:"degraded,omitempty"`
}

// IsTable reports whether the passage came from a well-formed table chunk
func (p Passage) IsTable() bool {
	return p.Kind == "table" && p.TableID != ""
}

// SourceRef points a generated answer back at the material it used
type SourceRef struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	ChunkID      string  `json:"chunk_id"`
	Score        float32 `json:"score"`
	TableID      string  `json:"table_id,omitempty"`
}

// Turn is one question/answer exchange in a conversation window
type Turn struct {
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Sources  []SourceRef `json:"sources,omitempty"`
	At       time.Time   `json:"at"`
}

// Session is the in-memory conversation state for one chat session.
// Turns hold the most recent window only; the full transcript lives in
// the database.
type Session struct {
	ID        string `json:"id"`
	Turns     []Turn `json:"turns"`
	LastQuery string `json:"last_query"`
}

// Query states as a request moves through the answer pipeline
const (
	StateReceived            = "RECEIVED"
	StateEmbedded            = "EMBEDDED"
	StateRetrieved           = "RETRIEVED"
	StateInsufficientContext = "INSUFFICIENT_CONTEXT"
	StateFallback            = "FALLBACK"
	StateContextReady        = "CONTEXT_READY"
	StateRouted              = "ROUTED"
	StateAnswered            = "ANSWERED"
	StateEscalationNeeded    = "ESCALATION_NEEDED"
	StateUnavailable         = "UNAVAILABLE"
)

// Query tracks one question through the pipeline
type Query struct {
	ID         string
	SessionID  string
	Text       string
	State      string
	Complexity float64
	Tier       string
	Escalated  bool
}
