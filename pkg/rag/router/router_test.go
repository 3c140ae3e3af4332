package router

import (
	"io"
	"log"
	"testing"

	"banking-assistant-be/pkg/llm"
)

func newTestRouter() *ComplexityRouter {
	return NewComplexityRouter(DefaultConfig(), log.New(io.Discard, "", 0))
}

func TestComplianceKeywordRoutesHeavy(t *testing.T) {
	r := newTestRouter()

	tier, score := r.SelectTier("What is the SAR filing deadline?", 0)
	if tier != llm.TierHeavy {
		t.Errorf("compliance query routed %s, want heavy", tier)
	}
	if score <= DefaultConfig().Threshold {
		t.Errorf("compliance score %v must exceed threshold %v", score, DefaultConfig().Threshold)
	}
}

func TestShortPlainQueryRoutesLight(t *testing.T) {
	r := newTestRouter()

	tier, score := r.SelectTier("What is the mortgage rate?", 0)
	if tier != llm.TierLight {
		t.Errorf("simple query routed %s (score %v), want light", tier, score)
	}
}

func TestDeepConversationBiasesHeavy(t *testing.T) {
	r := newTestRouter()

	// a long keyword-free question stays light in a fresh session
	long := "Can you please walk me through every difference between the personal loan offering and the mortgage offering including rates terms fees and the qualification process"
	tier, _ := r.SelectTier(long, 0)
	if tier != llm.TierLight {
		t.Fatalf("long fresh query routed %s, want light", tier)
	}

	// the same question deep into a conversation crosses the threshold
	tier, _ = r.SelectTier(long, 6)
	if tier != llm.TierHeavy {
		t.Errorf("long deep query routed %s, want heavy", tier)
	}
}

func TestKeywordNeedsWordBoundary(t *testing.T) {
	r := newTestRouter()

	if r.hasKeyword("is this necessary for my account") {
		t.Error("\"sar\" must not match inside \"necessary\"")
	}
	if !r.hasKeyword("when is the SAR due") {
		t.Error("standalone SAR must match case-insensitively")
	}
	if !r.hasKeyword("tell me about KYC.") {
		t.Error("keyword followed by punctuation must match")
	}
}

func TestComplexityDeterministic(t *testing.T) {
	r := newTestRouter()

	query := "Which audit requirements apply to wire transfers over ten thousand dollars?"
	first := r.Complexity(query, 3)
	for i := 0; i < 5; i++ {
		if got := r.Complexity(query, 3); got != first {
			t.Fatalf("complexity varied across calls: %v then %v", first, got)
		}
	}
}

func TestComplexityMonotoneInDepth(t *testing.T) {
	r := newTestRouter()

	prev := -1.0
	for depth := 0; depth <= 8; depth++ {
		score := r.Complexity("what changed in the fee schedule", depth)
		if score < prev {
			t.Fatalf("complexity dropped from %v to %v at depth %d", prev, score, depth)
		}
		prev = score
	}
}
