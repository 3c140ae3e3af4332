package chunking

import (
	"strings"
	"testing"
)

func TestDetectSegmentsPipeTable(t *testing.T) {
	content := `Fee schedule overview.

| Account | Monthly Fee |
|---------|-------------|
| Checking | $5.00 |
| Savings | $0.00 |

Fees are waived for premier customers.`

	segments := detectSegments(content)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	if segments[0].table != nil {
		t.Error("leading prose detected as table")
	}
	if segments[1].table == nil {
		t.Fatal("pipe table not detected")
	}
	if got := len(segments[1].table.rows); got != 2 {
		t.Errorf("expected 2 data rows, got %d", got)
	}
	if segments[1].table.separator == "" {
		t.Error("separator line not captured")
	}
	if segments[2].table != nil {
		t.Error("trailing prose detected as table")
	}
}

func TestDetectSegmentsAlignedTable(t *testing.T) {
	content := `Account fees by product:

Account Type    Monthly Fee    Minimum Balance
Checking        $5.00          $500
Savings         $0.00          $300`

	segments := detectSegments(content)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	table := segments[1].table
	if table == nil {
		t.Fatal("aligned table not detected")
	}
	if !strings.Contains(table.header, "Account Type") {
		t.Errorf("wrong header: %q", table.header)
	}
	if len(table.rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(table.rows))
	}
}

func TestDetectSegmentsInlinePipeStaysProse(t *testing.T) {
	content := `The | symbol separates fields in exports.
Use it with care.`

	segments := detectSegments(content)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].table != nil {
		t.Error("single pipe line must not form a table")
	}
}

func TestDegradedTableFallsBackToText(t *testing.T) {
	content := `| Name | Rate |
| Checking | 0.1% | extra | extra | extra |
| Savings | 0.5% |`

	chunker := NewChunker(DefaultConfig())
	chunks := chunker.Chunk(Document{Content: content})

	if len(chunks) == 0 {
		t.Fatal("expected chunks, got none")
	}
	for _, c := range chunks {
		if c.Kind != KindText {
			t.Errorf("degraded table chunk has kind %s, want %s", c.Kind, KindText)
		}
		if !c.DegradedTable {
			t.Error("degraded table chunk not flagged")
		}
	}
	// Content must survive the downgrade
	all := chunks[0].Text
	for _, want := range []string{"Checking", "0.1%", "Savings", "0.5%"} {
		if !strings.Contains(all, want) {
			t.Errorf("degraded chunk lost %q", want)
		}
	}
}

func TestSingleCellDriftTolerated(t *testing.T) {
	content := `| Name | Rate | Term |
| Checking | 0.1% |
| Savings | 0.5% | 12 months |`

	segments := detectSegments(content)
	if len(segments) != 1 || segments[0].table == nil {
		t.Fatal("one-cell drift must still parse as a table")
	}
}

func TestHeaderOnlyTable(t *testing.T) {
	content := `| Product | Rate | Term |
|---------|------|------|`

	chunker := NewChunker(DefaultConfig())
	chunks := chunker.Chunk(Document{Content: content})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if !c.IsTable() {
		t.Fatal("header-only table not a table chunk")
	}
	if c.Table.RowEnd != -1 {
		t.Errorf("header-only table RowEnd = %d, want -1", c.Table.RowEnd)
	}
}

func TestSplitTableRowRanges(t *testing.T) {
	content := `| ID | Balance |
|----|---------|
| 1 | $100 |
| 2 | $250 |
| 3 | $375 |
| 4 | $410 |
| 5 | $550 |`

	chunker := NewChunker(Config{MaxTokens: 17, OverlapTokens: 0})
	chunks := chunker.Chunk(Document{Content: content})

	if len(chunks) < 2 {
		t.Fatalf("expected the table to split, got %d chunks", len(chunks))
	}

	next := 0
	for i, c := range chunks {
		if !c.IsTable() {
			t.Fatalf("chunk %d is not a table fragment", i)
		}
		if !strings.HasPrefix(c.Text, "| ID | Balance |") {
			t.Errorf("fragment %d missing header prefix: %q", i, c.Text)
		}
		if c.Table.RowStart != next {
			t.Errorf("fragment %d starts at row %d, want %d", i, c.Table.RowStart, next)
		}
		if c.Table.RowEnd < c.Table.RowStart {
			t.Errorf("fragment %d has inverted range [%d,%d]", i, c.Table.RowStart, c.Table.RowEnd)
		}
		next = c.Table.RowEnd + 1
	}
	if next != 5 {
		t.Errorf("fragments cover rows up to %d, want 5", next)
	}
}

func TestSeparatorNotDuplicatedInFragments(t *testing.T) {
	content := `| ID | Balance |
|----|---------|
| 1 | $100 |
| 2 | $250 |
| 3 | $375 |`

	chunker := NewChunker(Config{MaxTokens: 12, OverlapTokens: 0})
	chunks := chunker.Chunk(Document{Content: content})

	for i, c := range chunks {
		if got := strings.Count(c.Text, "|----|"); got != 1 {
			t.Errorf("fragment %d contains separator %d times, want 1", i, got)
		}
	}
}

func TestTableOrdinalsPerDocument(t *testing.T) {
	content := `First table:

| A | B |
|---|---|
| 1 | 2 |

Second table:

| C | D |
|---|---|
| 3 | 4 |`

	chunker := NewChunker(DefaultConfig())
	chunks := chunker.Chunk(Document{Content: content})

	var ids []string
	for _, c := range chunks {
		if c.IsTable() {
			ids = append(ids, c.Table.TableID)
		}
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 table chunks, got %d", len(ids))
	}
	if ids[0] != "table_1" || ids[1] != "table_2" {
		t.Errorf("table ids = %v, want [table_1 table_2]", ids)
	}
}

func TestRenderCSV(t *testing.T) {
	rendered, err := RenderCSV("name,rate\nchecking,0.1%\nsavings,0.5%")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `| name | rate |
|---|---|
| checking | 0.1% |
| savings | 0.5% |`
	if rendered != want {
		t.Errorf("rendered csv mismatch:\ngot:\n%s\nwant:\n%s", rendered, want)
	}

	chunker := NewChunker(DefaultConfig())
	chunks := chunker.Chunk(Document{Content: rendered})
	if len(chunks) != 1 || !chunks[0].IsTable() {
		t.Fatal("rendered csv did not chunk as a table")
	}
	if chunks[0].Table.RowEnd != 1 {
		t.Errorf("csv table RowEnd = %d, want 1", chunks[0].Table.RowEnd)
	}
}

func TestRenderCSVEmpty(t *testing.T) {
	rendered, err := RenderCSV("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered != "" {
		t.Errorf("expected empty output, got %q", rendered)
	}
}
