package chunking

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// RenderCSV converts raw CSV data into a pipe-delimited table so CSV uploads
// flow through the same table-aware chunking as everything else. The first
// record becomes the header row.
func RenderCSV(data string) (string, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	var b strings.Builder
	for i, record := range records {
		b.WriteString("| ")
		b.WriteString(strings.Join(record, " | "))
		b.WriteString(" |\n")
		if i == 0 {
			b.WriteString("|")
			b.WriteString(strings.Repeat("---|", len(record)))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
