package search

import (
	"testing"

	"banking-assistant-be/pkg/store"
)

func TestConfidenceMonotone(t *testing.T) {
	w := DefaultConfidenceWeights()
	grid := []float64{0, 0.2, 0.4, 0.6, 0.8, 1}

	for _, top := range grid {
		for _, margin := range grid {
			for _, coverage := range grid {
				base := Confidence(w, top, margin, coverage)
				for _, delta := range []float64{0.1, 0.3} {
					if Confidence(w, top+delta, margin, coverage) < base {
						t.Fatalf("raising top lowered confidence at (%v,%v,%v)", top, margin, coverage)
					}
					if Confidence(w, top, margin+delta, coverage) < base {
						t.Fatalf("raising margin lowered confidence at (%v,%v,%v)", top, margin, coverage)
					}
					if Confidence(w, top, margin, coverage+delta) < base {
						t.Fatalf("raising coverage lowered confidence at (%v,%v,%v)", top, margin, coverage)
					}
				}
			}
		}
	}
}

func TestConfidenceClamped(t *testing.T) {
	w := DefaultConfidenceWeights()
	if got := Confidence(w, 5, 5, 5); got != 1 {
		t.Errorf("expected clamp to 1, got %v", got)
	}
	if got := Confidence(w, -2, -2, -2); got != 0 {
		t.Errorf("expected clamp to 0, got %v", got)
	}
}

func TestConfidencePerfectRetrievalScoresOne(t *testing.T) {
	w := DefaultConfidenceWeights()
	if got := Confidence(w, 1, 1, 1); got != 1 {
		t.Errorf("expected 1.0, got %v", got)
	}
}

func TestMargin(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single hit keeps its score", []float64{0.8}, 0.8},
		{"gap between first two", []float64{0.9, 0.6, 0.5}, 0.3},
		{"tied leaders", []float64{0.7, 0.7}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Margin(tt.scores)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Margin(%v) = %v, want %v", tt.scores, got, tt.want)
			}
		})
	}
}

func TestCoverage(t *testing.T) {
	passages := []store.Passage{
		{Content: "Personal loans carry an interest rate between 8.5% and 12.5%."},
		{Content: "Mortgage terms extend up to 30 years."},
	}

	// "loan" matches inside "loans"; all four terms are present
	if got := Coverage("personal loan interest rate", passages); got != 1 {
		t.Errorf("full coverage = %v, want 1", got)
	}

	// two of three terms present
	if got := Coverage("personal rate zebra", passages); got < 0.66 || got > 0.67 {
		t.Errorf("partial coverage = %v, want 2/3", got)
	}

	if got := Coverage("", passages); got != 0 {
		t.Errorf("empty query coverage = %v, want 0", got)
	}
	if got := Coverage("anything", nil); got != 0 {
		t.Errorf("no passages coverage = %v, want 0", got)
	}
	if got := Coverage("zebra quantum", passages); got != 0 {
		t.Errorf("unrelated terms coverage = %v, want 0", got)
	}
	if got := Coverage("mortgage", passages); got != 1 {
		t.Errorf("single present term coverage = %v, want 1", got)
	}
}
