package search

import (
	"io"
	"log"
	"strings"
	"testing"

	"banking-assistant-be/pkg/store"
)

func newTestAssembler() *Assembler {
	return NewAssembler(log.New(io.Discard, "", 0))
}

const loanHeader = "| Loan Type | Min Rate | Max Rate |"

func loanFragment(rowStart, rowEnd int, rows ...string) store.Passage {
	content := loanHeader + "\n|-----------|----------|----------|\n" + strings.Join(rows, "\n")
	return store.Passage{
		ChunkID:      "chunk-" + rows[0],
		DocumentID:   "doc-1",
		DocumentName: "loan_handbook.md",
		Content:      content,
		Score:        0.8,
		Kind:         "table",
		TableID:      "table_1",
		TableHeader:  loanHeader,
		RowStart:     rowStart,
		RowEnd:       rowEnd,
	}
}

func TestComposeAttributionHeaders(t *testing.T) {
	passages := []store.Passage{
		{DocumentName: "rates.md", Content: "Personal loans run 8.5% to 12.5%.", Kind: "text"},
		{DocumentName: "terms.md", Content: "Mortgages extend to 30 years.", Kind: "text"},
	}

	got := newTestAssembler().Compose(passages)
	want := "DOCUMENT 1: rates.md\nPersonal loans run 8.5% to 12.5%.\n\n---\n\nDOCUMENT 2: terms.md\nMortgages extend to 30 years."
	if got != want {
		t.Errorf("composed context:\n%q\nwant:\n%q", got, want)
	}
}

func TestRegroupMergesFragmentsInRowOrder(t *testing.T) {
	frags := []store.Passage{
		loanFragment(1, 1, "| Mortgage | 4.25% | 6.75% |"),
		loanFragment(0, 0, "| Personal | 8.5% | 12.5% |"),
		loanFragment(2, 2, "| Business | 6.5% | 15% |"),
	}

	merged := newTestAssembler().RegroupTables(frags)
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged passage, got %d", len(merged))
	}

	m := merged[0]
	if m.RowStart != 0 || m.RowEnd != 2 {
		t.Errorf("merged range [%d,%d], want [0,2]", m.RowStart, m.RowEnd)
	}

	// header and separator survive exactly once
	if got := strings.Count(m.Content, loanHeader); got != 1 {
		t.Errorf("header appears %d times, want 1", got)
	}
	if got := strings.Count(m.Content, "|-----------|"); got != 1 {
		t.Errorf("separator appears %d times, want 1", got)
	}

	// rows appear once each, in source order
	lines := strings.Split(m.Content, "\n")
	wantRows := []string{
		"| Personal | 8.5% | 12.5% |",
		"| Mortgage | 4.25% | 6.75% |",
		"| Business | 6.5% | 15% |",
	}
	if len(lines) != 2+len(wantRows) {
		t.Fatalf("merged content has %d lines, want %d:\n%s", len(lines), 2+len(wantRows), m.Content)
	}
	for i, want := range wantRows {
		if lines[2+i] != want {
			t.Errorf("row %d = %q, want %q", i, lines[2+i], want)
		}
	}
}

func TestRegroupKeepsFirstAppearancePosition(t *testing.T) {
	passages := []store.Passage{
		{DocumentID: "doc-1", DocumentName: "intro.md", Content: "Rates overview.", Kind: "text"},
		loanFragment(1, 1, "| Mortgage | 4.25% | 6.75% |"),
		{DocumentID: "doc-1", DocumentName: "notes.md", Content: "See appendix.", Kind: "text"},
		loanFragment(0, 0, "| Personal | 8.5% | 12.5% |"),
	}

	out := newTestAssembler().RegroupTables(passages)
	if len(out) != 3 {
		t.Fatalf("expected 3 passages after merge, got %d", len(out))
	}
	if out[0].Kind != "text" || !out[1].IsTable() || out[2].Kind != "text" {
		t.Errorf("merge did not keep the group's first position: %+v", out)
	}
	if out[1].RowStart != 0 || out[1].RowEnd != 1 {
		t.Errorf("merged range [%d,%d], want [0,1]", out[1].RowStart, out[1].RowEnd)
	}
}

func TestRegroupTakesBestScore(t *testing.T) {
	a := loanFragment(0, 0, "| Personal | 8.5% | 12.5% |")
	a.Score = 0.62
	b := loanFragment(1, 1, "| Mortgage | 4.25% | 6.75% |")
	b.Score = 0.91

	out := newTestAssembler().RegroupTables([]store.Passage{a, b})
	if len(out) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(out))
	}
	if out[0].Score != 0.91 {
		t.Errorf("merged score %v, want the group's best 0.91", out[0].Score)
	}
}

func TestRegroupLeavesSingletonAlone(t *testing.T) {
	frag := loanFragment(0, 2,
		"| Personal | 8.5% | 12.5% |",
		"| Mortgage | 4.25% | 6.75% |",
		"| Business | 6.5% | 15% |")

	out := newTestAssembler().RegroupTables([]store.Passage{frag})
	if len(out) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(out))
	}
	if out[0].Content != frag.Content {
		t.Error("singleton fragment must pass through unchanged")
	}
}

func TestRegroupDoesNotMergeAcrossDocuments(t *testing.T) {
	a := loanFragment(0, 0, "| Personal | 8.5% | 12.5% |")
	b := loanFragment(0, 0, "| Savings | 0.5% | 2.1% |")
	b.DocumentID = "doc-2"
	b.ChunkID = "chunk-other"

	out := newTestAssembler().RegroupTables([]store.Passage{a, b})
	if len(out) != 2 {
		t.Fatalf("fragments of different documents must not merge, got %d passages", len(out))
	}
}

func TestRegroupIgnoresDegradedTableText(t *testing.T) {
	degraded := store.Passage{
		DocumentID: "doc-1",
		Content:    "| broken | row |\n| too | many | cells | here |",
		Kind:       "text",
		Degraded:   true,
	}
	out := newTestAssembler().RegroupTables([]store.Passage{degraded})
	if len(out) != 1 || out[0].Content != degraded.Content {
		t.Error("degraded table text must pass through as prose")
	}
}
