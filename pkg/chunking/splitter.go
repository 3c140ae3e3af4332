package chunking

import (
	"regexp"
	"strings"
)

var (
	paragraphRe = regexp.MustCompile(`\n{2,}`)
	sentenceRe  = regexp.MustCompile(`[^.!?]+[.!?]+[\s]*|[^.!?]+$`)
)

// splitProse splits a prose block into budget-sized pieces. It seeks natural
// boundaries first (paragraphs, then sentences) and only falls back to raw
// token windows for a single run that exceeds the budget on its own.
func (c *Chunker) splitProse(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if CountTokens(text) <= c.cfg.MaxTokens {
		return []string{text}
	}
	return c.pack(c.proseUnits(text))
}

// proseUnits breaks text down until every unit fits the token budget
func (c *Chunker) proseUnits(text string) []string {
	var units []string
	for _, para := range paragraphRe.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if CountTokens(para) <= c.cfg.MaxTokens {
			units = append(units, para)
			continue
		}
		for _, sent := range splitSentences(para) {
			if CountTokens(sent) <= c.cfg.MaxTokens {
				units = append(units, sent)
				continue
			}
			units = append(units, c.windowTokens(sent)...)
		}
	}
	return units
}

// pack greedily fills chunks from units, carrying OverlapTokens from the end
// of each emitted chunk into the next one.
func (c *Chunker) pack(units []string) []string {
	var chunks []string
	var buf []string
	bufTokens := 0
	overlapping := false

	flush := func() {
		if bufTokens == 0 {
			return
		}
		text := strings.Join(buf, " ")
		chunks = append(chunks, text)

		tail := tailTokens(text, c.cfg.OverlapTokens)
		buf = buf[:0]
		bufTokens = 0
		overlapping = false
		if tail != "" {
			buf = append(buf, tail)
			bufTokens = CountTokens(tail)
			overlapping = true
		}
	}

	for _, unit := range units {
		unitTokens := CountTokens(unit)
		if bufTokens+unitTokens > c.cfg.MaxTokens {
			if overlapping && len(buf) == 1 {
				// Only the carried overlap is in the buffer; drop it rather
				// than emitting an overlap-only chunk.
				buf = buf[:0]
				bufTokens = 0
				overlapping = false
			} else {
				flush()
				if bufTokens+unitTokens > c.cfg.MaxTokens {
					buf = buf[:0]
					bufTokens = 0
					overlapping = false
				}
			}
		}
		buf = append(buf, unit)
		bufTokens += unitTokens
	}
	if overlapping && len(buf) == 1 {
		// Nothing but the carried overlap remains
		return chunks
	}
	if bufTokens > 0 {
		chunks = append(chunks, strings.Join(buf, " "))
	}

	return chunks
}

// windowTokens slices an unbreakable run into fixed token windows with overlap
func (c *Chunker) windowTokens(text string) []string {
	fields := strings.Fields(text)
	step := c.cfg.MaxTokens - c.cfg.OverlapTokens
	if step <= 0 {
		step = c.cfg.MaxTokens
	}

	var windows []string
	for i := 0; i < len(fields); i += step {
		end := i + c.cfg.MaxTokens
		if end > len(fields) {
			end = len(fields)
		}
		windows = append(windows, strings.Join(fields[i:end], " "))
		if end == len(fields) {
			break
		}
	}
	return windows
}

func splitSentences(text string) []string {
	matches := sentenceRe.FindAllString(text, -1)
	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if m != "" {
			sentences = append(sentences, m)
		}
	}
	if len(sentences) == 0 {
		return []string{text}
	}
	return sentences
}
