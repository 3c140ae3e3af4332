package search

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"banking-assistant-be/pkg/store"
)

// Assembler composes retrieved passages into the model context block
type Assembler struct {
	logger *log.Logger
}

// NewAssembler creates a new context assembler
func NewAssembler(logger *log.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Compose merges table fragments and renders the passages as one context
// block with per-document attribution headers
func (a *Assembler) Compose(passages []store.Passage) string {
	merged := a.RegroupTables(passages)

	blocks := make([]string, len(merged))
	for i, p := range merged {
		blocks[i] = fmt.Sprintf("DOCUMENT %d: %s\n%s", i+1, p.DocumentName, p.Content)
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

type tableKey struct {
	documentID string
	tableID    string
}

// RegroupTables merges fragments sharing a table id back into one logical
// excerpt: sorted by row range, header kept once. Table ordinals restart
// per document, so grouping is keyed by document and table together. The
// merged passage takes the position of the group's first appearance and
// the group's best score.
func (a *Assembler) RegroupTables(passages []store.Passage) []store.Passage {
	groups := make(map[tableKey][]store.Passage)
	for _, p := range passages {
		if !p.IsTable() {
			continue
		}
		k := tableKey{p.DocumentID, p.TableID}
		groups[k] = append(groups[k], p)
	}

	var out []store.Passage
	done := make(map[tableKey]bool)

	for _, p := range passages {
		if !p.IsTable() {
			out = append(out, p)
			continue
		}
		k := tableKey{p.DocumentID, p.TableID}
		if done[k] {
			continue
		}
		done[k] = true

		group := groups[k]
		if len(group) == 1 {
			out = append(out, p)
			continue
		}
		out = append(out, a.mergeGroup(group))
	}

	return out
}

func (a *Assembler) mergeGroup(group []store.Passage) store.Passage {
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].RowStart < group[j].RowStart
	})

	merged := group[0]
	parts := []string{group[0].Content}

	for _, p := range group[1:] {
		parts = append(parts, stripHeadBlock(p.Content, p.TableHeader))
		if p.Score > merged.Score {
			merged.Score = p.Score
		}
		if p.RowEnd > merged.RowEnd {
			merged.RowEnd = p.RowEnd
		}
	}

	merged.Content = strings.Join(parts, "\n")
	a.logger.Printf("[DEBUG] Merged %d fragments of %s rows %d-%d",
		len(group), merged.TableID, merged.RowStart, merged.RowEnd)
	return merged
}

var separatorLineRe = regexp.MustCompile(`^[\s|:\-+=]+$`)

// stripHeadBlock removes the repeated header line, and the separator line
// under it, from a table fragment so merged excerpts keep the header once
func stripHeadBlock(content, header string) string {
	lines := strings.Split(content, "\n")
	i := 0
	if i < len(lines) && lines[i] == header {
		i++
	}
	if i < len(lines) && strings.Contains(lines[i], "-") && separatorLineRe.MatchString(lines[i]) {
		i++
	}
	return strings.Join(lines[i:], "\n")
}
