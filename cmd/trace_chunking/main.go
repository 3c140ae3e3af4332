package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"banking-assistant-be/pkg/chunking"
)

const sampleDocument = `# Account Fee Schedule

Standard checking accounts carry no monthly fee when the balance stays
above the minimum. Savings accounts accrue interest daily.

| account | monthly fee | minimum balance |
| checking | $0 | $500 |
| savings | $5 | $300 |
| premium | $25 | $10,000 |

Wire transfers are processed same day when submitted before 2pm local
time. International wires may take up to five business days.`

func main() {
	content := sampleDocument
	name := "sample.md"

	if len(os.Args) > 1 {
		path := os.Args[1]
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", path, err)
		}
		content = string(data)
		name = filepath.Base(path)

		if strings.EqualFold(filepath.Ext(path), ".csv") {
			rendered, err := chunking.RenderCSV(content)
			if err != nil {
				log.Fatalf("Failed to render CSV: %v", err)
			}
			content = rendered
		}
	}

	chunker := chunking.NewChunker(chunking.DefaultConfig())
	chunks := chunker.Chunk(chunking.Document{ID: "trace", Name: name, Content: content})

	fmt.Println("--- CHUNKING TRACE ---")
	fmt.Printf("Document: %s\n", name)
	fmt.Printf("Total Length: %d chars, %d tokens\n", len(content), chunking.CountTokens(content))
	fmt.Printf("Produced %d chunks\n", len(chunks))
	fmt.Println("----------------------")

	var tableChunks, proseChunks, degraded, totalTokens int
	for _, c := range chunks {
		totalTokens += c.Tokens
		if c.IsTable() {
			tableChunks++
		} else {
			proseChunks++
		}
		if c.DegradedTable {
			degraded++
		}

		preview := strings.ReplaceAll(c.Text, "\n", "\\n")
		if len(preview) > 70 {
			preview = preview[:70] + "..."
		}
		fmt.Printf("[Chunk %d] kind=%s tokens=%d", c.Index, c.Kind, c.Tokens)
		if c.Table != nil {
			fmt.Printf(" table=%s rows=%d..%d", c.Table.TableID, c.Table.RowStart, c.Table.RowEnd)
		}
		if c.DegradedTable {
			fmt.Print(" DEGRADED")
		}
		fmt.Printf("\n  %s\n", preview)
	}

	fmt.Println("--- SUMMARY ---")
	fmt.Printf("Prose: %d, Table: %d, Degraded: %d\n", proseChunks, tableChunks, degraded)
	fmt.Printf("Token total across chunks: %d (source %d, overlap accounts for the difference)\n",
		totalTokens, chunking.CountTokens(content))

	// Coverage check: every table row of the source should appear in some chunk
	fmt.Println("--- VERIFYING COVERAGE ---")
	missing := 0
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		found := false
		for _, c := range chunks {
			if strings.Contains(c.Text, line) {
				found = true
				break
			}
		}
		if !found {
			missing++
			fmt.Printf("MISSING: %q\n", line)
		}
	}
	if missing == 0 {
		fmt.Println("OK: every source line is covered by at least one chunk")
	} else {
		fmt.Printf("WARN: %d source lines not found verbatim in any chunk\n", missing)
	}
}
