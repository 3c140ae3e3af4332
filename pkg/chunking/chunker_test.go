package chunking

import (
	"reflect"
	"strings"
	"testing"
)

const loanHandbook = `LOAN PRODUCTS HANDBOOK

1. PERSONAL LOANS
Interest Rate: 8.5% - 12.5% APR
Term Length: 12-60 months
Minimum Amount: $1,000
Maximum Amount: $50,000

FEES AND CHARGES:
- Application Fee: $50
- Origination Fee: 1-3% of loan amount
- Late Payment Fee: $25

Table 1.1: Loan Comparison
| Loan Type | Min Rate | Max Rate | Min Term | Max Term | Min Amount |
|-----------|----------|----------|----------|----------|------------|
| Personal  | 8.5%     | 12.5%    | 12 months| 60 months| $1,000     |
| Mortgage  | 4.25%    | 6.75%    | 15 years | 30 years | $50,000    |
| Business  | 6.5%     | 15%      | 1 year   | 10 years | $10,000    |`

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(s) {
		set[f] = true
	}
	return set
}

func TestChunkCoversAllContent(t *testing.T) {
	chunker := NewChunker(Config{MaxTokens: 40, OverlapTokens: 8})
	chunks := chunker.Chunk(Document{ID: "doc-1", Name: "loan_handbook.txt", Content: loanHandbook})

	if len(chunks) == 0 {
		t.Fatal("expected chunks, got none")
	}

	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c.Text)
		joined.WriteString("\n")
	}

	in := tokenSet(loanHandbook)
	out := tokenSet(joined.String())

	for tok := range in {
		if !out[tok] {
			t.Errorf("input token %q missing from chunks", tok)
		}
	}
	for tok := range out {
		if !in[tok] {
			t.Errorf("chunks contain token %q not present in input", tok)
		}
	}
}

func TestChunkRespectsBudget(t *testing.T) {
	chunker := NewChunker(Config{MaxTokens: 40, OverlapTokens: 8})
	chunks := chunker.Chunk(Document{ID: "doc-1", Content: loanHandbook})

	for _, c := range chunks {
		if c.Tokens <= 40 {
			continue
		}
		// A table fragment may exceed the budget only when a single row
		// plus the header cannot fit.
		if c.IsTable() && c.Table.RowStart == c.Table.RowEnd {
			continue
		}
		t.Errorf("chunk %d exceeds budget: %d tokens (kind=%s)", c.Index, c.Tokens, c.Kind)
	}
}

func TestChunkIndicesSequential(t *testing.T) {
	chunker := NewChunker(DefaultConfig())
	chunks := chunker.Chunk(Document{Content: loanHandbook})

	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk at position %d has index %d", i, c.Index)
		}
	}
}

func TestChunkDeterministic(t *testing.T) {
	chunker := NewChunker(Config{MaxTokens: 30, OverlapTokens: 5})
	doc := Document{ID: "doc-1", Content: loanHandbook}

	first := chunker.Chunk(doc)
	second := chunker.Chunk(doc)

	if !reflect.DeepEqual(first, second) {
		t.Error("chunking is not deterministic for identical input")
	}
}

func TestChunkEmptyDocument(t *testing.T) {
	chunker := NewChunker(DefaultConfig())

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\n\t  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chunker.Chunk(Document{Content: tt.content}); len(got) != 0 {
				t.Errorf("expected no chunks, got %d", len(got))
			}
		})
	}
}

func TestChunkOverlapCarried(t *testing.T) {
	var sentences []string
	for i := 0; i < 30; i++ {
		sentences = append(sentences, "The quarterly compliance review covers lending policy updates and audit findings.")
	}
	content := strings.Join(sentences, " ")

	chunker := NewChunker(Config{MaxTokens: 30, OverlapTokens: 6})
	chunks := chunker.Chunk(Document{Content: content})

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Text)
		curr := strings.Fields(chunks[i].Text)

		tail := prev
		if len(tail) > 6 {
			tail = tail[len(tail)-6:]
		}
		if len(curr) < len(tail) {
			t.Fatalf("chunk %d shorter than expected overlap", i)
		}
		for j, tok := range tail {
			if curr[j] != tok {
				t.Errorf("chunk %d does not start with overlap of chunk %d: got %q want %q", i, i-1, curr[j], tok)
				break
			}
		}
	}
}

func TestChunkLongUnbrokenRun(t *testing.T) {
	// No sentence or paragraph boundaries at all
	content := strings.TrimSpace(strings.Repeat("alpha beta gamma delta ", 100))

	chunker := NewChunker(Config{MaxTokens: 50, OverlapTokens: 10})
	chunks := chunker.Chunk(Document{Content: content})

	if len(chunks) < 2 {
		t.Fatalf("expected window fallback to produce multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.Tokens > 50 {
			t.Errorf("window chunk exceeds budget: %d tokens", c.Tokens)
		}
	}
}

func TestChunkLoanHandbookRetrievalUnit(t *testing.T) {
	// The mortgage rate row must stay attached to its header so a chunk
	// retrieved for a mortgage question carries the column meaning.
	chunker := NewChunker(Config{MaxTokens: 25, OverlapTokens: 0})
	chunks := chunker.Chunk(Document{Name: "loan_handbook.txt", Content: loanHandbook})

	found := false
	for _, c := range chunks {
		if !strings.Contains(c.Text, "4.25%") {
			continue
		}
		found = true
		if !c.IsTable() {
			t.Errorf("mortgage row chunk is not a table fragment: kind=%s", c.Kind)
		}
		if !strings.Contains(c.Text, "Min Rate") || !strings.Contains(c.Text, "Max Rate") {
			t.Errorf("mortgage row chunk lost its header: %q", c.Text)
		}
	}
	if !found {
		t.Fatal("no chunk contains the mortgage rate row")
	}
}
