package llm

import (
	"context"
	"testing"
)

func TestParseSelfConfidence(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantText  string
		wantScore float64
	}{
		{
			name:      "trailing marker stripped",
			raw:       "The mortgage rate is 4.25% APR.\nCONFIDENCE: 0.9",
			wantText:  "The mortgage rate is 4.25% APR.",
			wantScore: 0.9,
		},
		{
			name:      "marker case insensitive",
			raw:       "Rates range from 8.5% to 12.5%.\nconfidence: 0.75",
			wantText:  "Rates range from 8.5% to 12.5%.",
			wantScore: 0.75,
		},
		{
			name:      "marker clamped above one",
			raw:       "Sure answer.\nCONFIDENCE: 1.8",
			wantText:  "Sure answer.",
			wantScore: 1,
		},
		{
			name:      "no marker defaults",
			raw:       "The fee schedule lists a $25 late payment fee.",
			wantText:  "The fee schedule lists a $25 late payment fee.",
			wantScore: 0.75,
		},
		{
			name:      "refusal without marker",
			raw:       "I cannot answer this from the provided context.",
			wantText:  "I cannot answer this from the provided context.",
			wantScore: 0.2,
		},
		{
			name:      "refusal phrasing variant",
			raw:       "That detail is not available in the documents provided.",
			wantText:  "That detail is not available in the documents provided.",
			wantScore: 0.2,
		},
		{
			name:      "marker only at end counts",
			raw:       "CONFIDENCE: 0.5 is how sure the last answer was. New answer here.",
			wantText:  "CONFIDENCE: 0.5 is how sure the last answer was. New answer here.",
			wantScore: 0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, score := ParseSelfConfidence(tt.raw)
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
			if score != tt.wantScore {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
		})
	}
}

type scriptedProvider struct {
	reply string
	calls int
}

func (s *scriptedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	s.calls++
	return s.reply, nil
}

func (s *scriptedProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return s.Chat(ctx, []Message{{Role: "user", Content: prompt}}, options...)
}

func TestTieredModelDispatch(t *testing.T) {
	light := &scriptedProvider{reply: "light answer\nCONFIDENCE: 0.3"}
	heavy := &scriptedProvider{reply: "heavy answer\nCONFIDENCE: 0.95"}
	model := NewTieredModel(light, heavy)

	ctx := context.Background()
	history := []Message{{Role: "user", Content: "what is the wire transfer fee?"}}

	res, err := model.Answer(ctx, history, TierLight)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "light answer" || res.SelfConfidence != 0.3 || res.Tier != TierLight {
		t.Errorf("light result = %+v", res)
	}

	res, err = model.Answer(ctx, history, TierHeavy)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "heavy answer" || res.SelfConfidence != 0.95 || res.Tier != TierHeavy {
		t.Errorf("heavy result = %+v", res)
	}

	if light.calls != 1 || heavy.calls != 1 {
		t.Errorf("calls = light %d heavy %d, want 1 and 1", light.calls, heavy.calls)
	}
}

func TestTieredModelSingleProvider(t *testing.T) {
	only := &scriptedProvider{reply: "shared answer"}
	model := NewTieredModel(only, nil)

	if _, err := model.Answer(context.Background(), []Message{{Role: "user", Content: "q"}}, TierHeavy); err != nil {
		t.Fatal(err)
	}
	if only.calls != 1 {
		t.Errorf("light provider not used for heavy tier fallback, calls = %d", only.calls)
	}
}
