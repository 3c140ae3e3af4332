package chunking

import (
	"fmt"
	"strings"
)

// Config encapsulates chunking parameters
type Config struct {
	MaxTokens     int
	OverlapTokens int
}

// DefaultConfig returns the default chunking configuration
func DefaultConfig() Config {
	return Config{
		MaxTokens:     250,
		OverlapTokens: 50,
	}
}

// Chunker splits documents into retrieval units. Tables are detected and kept
// structurally intact; prose is split at natural boundaries with overlap.
// Chunking is deterministic: the same document always yields the same chunks.
type Chunker struct {
	cfg Config
}

// NewChunker creates a chunker, falling back to defaults for invalid config
func NewChunker(cfg Config) *Chunker {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	if cfg.OverlapTokens < 0 || cfg.OverlapTokens >= cfg.MaxTokens {
		cfg.OverlapTokens = cfg.MaxTokens / 5
	}
	return &Chunker{cfg: cfg}
}

// Chunk splits a document into ordered chunks
func (c *Chunker) Chunk(doc Document) []Chunk {
	segments := detectSegments(doc.Content)

	var chunks []Chunk
	tableOrdinal := 0

	for _, seg := range segments {
		if seg.table != nil {
			tableOrdinal++
			chunks = append(chunks, c.chunkTable(seg.table, tableOrdinal)...)
			continue
		}
		for _, text := range c.splitProse(seg.text) {
			chunks = append(chunks, Chunk{
				Text:          text,
				Tokens:        CountTokens(text),
				Kind:          KindText,
				DegradedTable: seg.degraded,
			})
		}
	}

	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}

// chunkTable turns a table run into one or more fragments. A table fitting
// the budget stays whole. An oversized table is split by whole rows and every
// fragment is re-prefixed with the header so each one reads standalone.
// A fragment always carries at least one data row, even slightly over budget.
func (c *Chunker) chunkTable(block *tableBlock, ordinal int) []Chunk {
	tableID := fmt.Sprintf("table_%d", ordinal)

	headBlock := block.header
	if block.separator != "" {
		headBlock += "\n" + block.separator
	}
	headTokens := CountTokens(headBlock)

	full := headBlock
	if len(block.rows) > 0 {
		full += "\n" + strings.Join(block.rows, "\n")
	}

	if len(block.rows) == 0 {
		return []Chunk{{
			Text:   full,
			Tokens: CountTokens(full),
			Kind:   KindTable,
			Table:  &TableMeta{TableID: tableID, Header: block.header, RowStart: 0, RowEnd: -1},
		}}
	}

	if CountTokens(full) <= c.cfg.MaxTokens {
		return []Chunk{{
			Text:   full,
			Tokens: CountTokens(full),
			Kind:   KindTable,
			Table:  &TableMeta{TableID: tableID, Header: block.header, RowStart: 0, RowEnd: len(block.rows) - 1},
		}}
	}

	var chunks []Chunk
	rowStart := 0
	fragRows := make([]string, 0, len(block.rows))
	fragTokens := headTokens

	emit := func(rowEnd int) {
		text := headBlock + "\n" + strings.Join(fragRows, "\n")
		chunks = append(chunks, Chunk{
			Text:   text,
			Tokens: CountTokens(text),
			Kind:   KindTable,
			Table:  &TableMeta{TableID: tableID, Header: block.header, RowStart: rowStart, RowEnd: rowEnd},
		})
		rowStart = rowEnd + 1
		fragRows = fragRows[:0]
		fragTokens = headTokens
	}

	for i, row := range block.rows {
		rowTokens := CountTokens(row)
		if len(fragRows) > 0 && fragTokens+rowTokens > c.cfg.MaxTokens {
			emit(i - 1)
		}
		fragRows = append(fragRows, row)
		fragTokens += rowTokens
	}
	if len(fragRows) > 0 {
		emit(len(block.rows) - 1)
	}

	return chunks
}
