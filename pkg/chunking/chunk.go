package chunking

// Kind classifies what a chunk carries
type Kind string

const (
	KindText  Kind = "text"
	KindTable Kind = "table"
)

// Document is the raw input to the chunker
type Document struct {
	ID      string
	Name    string
	Content string
}

// TableMeta describes the slice of a source table carried by a table chunk.
// RowStart/RowEnd are 0-based inclusive indices over the table's data rows
// (the header is not counted). RowEnd is -1 for a header-only table.
type TableMeta struct {
	TableID  string `json:"table_id"`
	Header   string `json:"header"`
	RowStart int    `json:"row_start"`
	RowEnd   int    `json:"row_end"`
}

// Chunk is a single retrieval unit
type Chunk struct {
	Index         int        `json:"index"`
	Text          string     `json:"text"`
	Tokens        int        `json:"tokens"`
	Kind          Kind       `json:"kind"`
	Table         *TableMeta `json:"table,omitempty"`
	DegradedTable bool       `json:"degraded_table,omitempty"`
}

// IsTable reports whether the chunk is a well-formed table fragment
func (c Chunk) IsTable() bool {
	return c.Kind == KindTable && c.Table != nil
}
