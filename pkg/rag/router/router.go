package router

import (
	"log"
	"math"
	"strings"

	"banking-assistant-be/pkg/chunking"
	"banking-assistant-be/pkg/llm"
)

// Config encapsulates routing parameters
type Config struct {
	Threshold     float64
	KeywordWeight float64
	LengthWeight  float64
	DepthWeight   float64
	LengthNorm    int
	DepthNorm     int
	Keywords      []string
}

// DefaultConfig returns default routing configuration
func DefaultConfig() Config {
	return Config{
		Threshold:     0.35,
		KeywordWeight: 0.6,
		LengthWeight:  0.25,
		DepthWeight:   0.15,
		LengthNorm:    24,
		DepthNorm:     6,
		Keywords:      ComplianceKeywords(),
	}
}

// ComplianceKeywords are the regulatory terms that demand the stronger
// tier on their own
func ComplianceKeywords() []string {
	return []string{
		"regulation", "compliance", "regulatory", "requirement",
		"deadline", "audit", "policy", "procedure",
		"sar", "kyc", "aml", "bsa",
	}
}

// ComplexityRouter selects the answering tier from deterministic query
// features: keyword presence, token length and conversation depth
type ComplexityRouter struct {
	config Config
	logger *log.Logger
}

// NewComplexityRouter creates a new router
func NewComplexityRouter(config Config, logger *log.Logger) *ComplexityRouter {
	return &ComplexityRouter{
		config: config,
		logger: logger,
	}
}

// SelectTier scores the query and picks the tier. Scores above the
// threshold go heavy, everything else goes light.
func (r *ComplexityRouter) SelectTier(query string, depth int) (llm.Tier, float64) {
	score := r.Complexity(query, depth)

	tier := llm.TierLight
	if score > r.config.Threshold {
		tier = llm.TierHeavy
	}

	r.logger.Printf("[DEBUG] Complexity %.4f (threshold %.2f) -> %s tier", score, r.config.Threshold, tier)
	return tier, score
}

// Complexity blends the three signals into a deterministic score.
// Keyword presence alone is weighted to clear the threshold.
func (r *ComplexityRouter) Complexity(query string, depth int) float64 {
	keyword := 0.0
	if r.hasKeyword(query) {
		keyword = 1.0
	}

	length := math.Min(1, float64(chunking.CountTokens(query))/float64(r.config.LengthNorm))
	conversation := math.Min(1, float64(depth)/float64(r.config.DepthNorm))

	return r.config.KeywordWeight*keyword +
		r.config.LengthWeight*length +
		r.config.DepthWeight*conversation
}

// hasKeyword matches on word boundaries so short terms like "sar" never
// fire inside unrelated words
func (r *ComplexityRouter) hasKeyword(query string) bool {
	words := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(query)) {
		f = strings.Trim(f, ".,;:!?\"'()")
		if f != "" {
			words[f] = true
		}
	}

	for _, kw := range r.config.Keywords {
		if words[kw] {
			return true
		}
	}
	return false
}
