package llm

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// Tier selects the capability class used to answer a query
type Tier string

const (
	TierLight Tier = "light"
	TierHeavy Tier = "heavy"
)

// Result is a model answer together with the model's own confidence in it
type Result struct {
	Text           string
	SelfConfidence float64
	Tier           Tier
}

// AnswerModel produces answers at a chosen capability tier
type AnswerModel interface {
	Answer(ctx context.Context, history []Message, tier Tier, options ...Option) (*Result, error)
}

// TieredModel routes answers to a cheap or a strong provider by tier.
// With no heavy provider configured, both tiers share the light one.
type TieredModel struct {
	light LLMProvider
	heavy LLMProvider
}

var _ AnswerModel = &TieredModel{}

func NewTieredModel(light, heavy LLMProvider) *TieredModel {
	if heavy == nil {
		heavy = light
	}
	return &TieredModel{
		light: light,
		heavy: heavy,
	}
}

func (m *TieredModel) Answer(ctx context.Context, history []Message, tier Tier, options ...Option) (*Result, error) {
	provider := m.light
	if tier == TierHeavy {
		provider = m.heavy
	}

	raw, err := provider.Chat(ctx, history, options...)
	if err != nil {
		return nil, err
	}

	answer, confidence := ParseSelfConfidence(raw)
	return &Result{
		Text:           answer,
		SelfConfidence: confidence,
		Tier:           tier,
	}, nil
}

var confidenceMarkerRe = regexp.MustCompile(`(?i)\n?\s*CONFIDENCE:\s*([0-9]*\.?[0-9]+)\s*$`)

// refusalPhrases mark answers where the model declined despite not
// reporting a confidence value
var refusalPhrases = []string{
	"i don't know",
	"i do not know",
	"cannot answer",
	"can't answer",
	"unable to answer",
	"not available in the documents",
	"no information",
	"not mentioned in the",
}

// ParseSelfConfidence extracts the trailing "CONFIDENCE: <0..1>" marker the
// prompt asks every model to emit, stripping it from the returned text.
// Replies without a usable marker fall back to a refusal heuristic: a
// declining answer scores 0.2, anything else 0.75.
func ParseSelfConfidence(text string) (string, float64) {
	if m := confidenceMarkerRe.FindStringSubmatchIndex(text); m != nil {
		value, err := strconv.ParseFloat(text[m[2]:m[3]], 64)
		if err == nil {
			return strings.TrimSpace(text[:m[0]]), clamp01(value)
		}
	}

	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return trimmed, 0.2
		}
	}
	return trimmed, 0.75
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
