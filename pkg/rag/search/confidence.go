package search

import (
	"strings"

	"banking-assistant-be/pkg/store"
)

// ConfidenceWeights blends the retrieval quality signals. Weights should
// sum to 1 so a perfect retrieval scores 1.0.
type ConfidenceWeights struct {
	Top      float64
	Margin   float64
	Coverage float64
}

// DefaultConfidenceWeights returns the standard blend
func DefaultConfidenceWeights() ConfidenceWeights {
	return ConfidenceWeights{
		Top:      0.5,
		Margin:   0.2,
		Coverage: 0.3,
	}
}

// Confidence folds top score, first-to-second margin and query term
// coverage into one [0,1] score, non-decreasing in each input
func Confidence(w ConfidenceWeights, top, margin, coverage float64) float64 {
	return clamp01(w.Top*clamp01(top) + w.Margin*clamp01(margin) + w.Coverage*clamp01(coverage))
}

// Margin returns the gap between the two best scores. A single hit keeps
// its full score as margin.
func Margin(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	if len(scores) == 1 {
		return scores[0]
	}
	return scores[0] - scores[1]
}

// Coverage is the fraction of distinct query terms that appear somewhere
// in the retrieved passage texts
func Coverage(query string, passages []store.Passage) float64 {
	terms := distinctTerms(query)
	if len(terms) == 0 || len(passages) == 0 {
		return 0
	}

	var sb strings.Builder
	for _, p := range passages {
		sb.WriteString(strings.ToLower(p.Content))
		sb.WriteByte('\n')
	}
	corpus := sb.String()

	hits := 0
	for term := range terms {
		if strings.Contains(corpus, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}

func distinctTerms(query string) map[string]bool {
	terms := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(query)) {
		f = strings.Trim(f, ".,;:!?\"'()")
		if f != "" {
			terms[f] = true
		}
	}
	return terms
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
