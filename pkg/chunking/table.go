package chunking

import (
	"regexp"
	"strings"
)

// segment is a contiguous block of the source document: either prose,
// a well-formed table run, or a malformed table run downgraded to prose.
type segment struct {
	text     string
	degraded bool
	table    *tableBlock
}

// tableBlock is a detected table run split into its parts
type tableBlock struct {
	header    string
	separator string
	rows      []string
}

// rowCellVariance is the tolerated cell-count drift between a table header
// and its rows. Rows drifting further mark the whole run as degraded.
const rowCellVariance = 1

var (
	pipeSeparatorRe = regexp.MustCompile(`^[\s|:\-+=]+$`)
	columnGapRe     = regexp.MustCompile(`\s{2,}`)
)

// pipeCells splits a pipe-delimited line into trimmed cells, dropping the
// empty edge cells produced by leading and trailing pipes.
func pipeCells(line string) []string {
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" && (i == 0 || i == len(parts)-1) {
			continue
		}
		cells = append(cells, p)
	}
	return cells
}

func isPipeLine(line string) bool {
	return strings.Contains(line, "|") && len(pipeCells(line)) >= 2
}

func isPipeSeparator(line string) bool {
	if !strings.Contains(line, "|") || !strings.Contains(line, "-") {
		return false
	}
	return pipeSeparatorRe.MatchString(line)
}

// alignedColumns splits a line on runs of two or more spaces
func alignedColumns(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	return columnGapRe.Split(trimmed, -1)
}

// detectSegments walks the document line by line and carves out table runs,
// leaving everything else as prose segments.
func detectSegments(content string) []segment {
	lines := strings.Split(content, "\n")

	var segments []segment
	var prose []string

	flushProse := func() {
		text := strings.TrimSpace(strings.Join(prose, "\n"))
		if text != "" {
			segments = append(segments, segment{text: text})
		}
		prose = prose[:0]
	}

	i := 0
	for i < len(lines) {
		if block, consumed, degraded := matchPipeTable(lines, i); consumed > 0 {
			flushProse()
			if degraded {
				segments = append(segments, segment{
					text:     strings.TrimSpace(strings.Join(lines[i:i+consumed], "\n")),
					degraded: true,
				})
			} else {
				segments = append(segments, segment{table: block})
			}
			i += consumed
			continue
		}
		if block, consumed := matchAlignedTable(lines, i); consumed > 0 {
			flushProse()
			segments = append(segments, segment{table: block})
			i += consumed
			continue
		}
		prose = append(prose, lines[i])
		i++
	}
	flushProse()

	return segments
}

// matchPipeTable matches a run of pipe-delimited lines starting at start.
// A run needs at least two lines (header plus separator or data row).
// Rows whose cell count drifts beyond rowCellVariance from the header mark
// the run degraded; the caller then keeps the raw text as flagged prose.
func matchPipeTable(lines []string, start int) (*tableBlock, int, bool) {
	if !isPipeLine(lines[start]) || isPipeSeparator(lines[start]) {
		return nil, 0, false
	}

	end := start
	for end < len(lines) && (isPipeLine(lines[end]) || isPipeSeparator(lines[end])) {
		end++
	}
	if end-start < 2 {
		return nil, 0, false
	}

	block := &tableBlock{header: lines[start]}
	headerCells := len(pipeCells(block.header))

	degraded := false
	for _, line := range lines[start+1 : end] {
		if isPipeSeparator(line) {
			if block.separator == "" && len(block.rows) == 0 {
				block.separator = line
			}
			continue
		}
		drift := len(pipeCells(line)) - headerCells
		if drift < -rowCellVariance || drift > rowCellVariance {
			degraded = true
		}
		block.rows = append(block.rows, line)
	}

	return block, end - start, degraded
}

// matchAlignedTable matches a run of whitespace-aligned lines sharing a
// stable column count. Alignment is the only signal here, so the run ends
// at the first line whose column count differs.
func matchAlignedTable(lines []string, start int) (*tableBlock, int) {
	cols := len(alignedColumns(lines[start]))
	if cols < 2 {
		return nil, 0
	}

	end := start
	for end < len(lines) && len(alignedColumns(lines[end])) == cols && !strings.Contains(lines[end], "|") {
		end++
	}
	if end-start < 2 {
		return nil, 0
	}

	return &tableBlock{
		header: lines[start],
		rows:   lines[start+1 : end],
	}, end - start
}
