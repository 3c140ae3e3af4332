package search

import (
	"context"
	"fmt"
	"log"

	"banking-assistant-be/pkg/embedding"
	"banking-assistant-be/pkg/store"
	"banking-assistant-be/pkg/vectorindex"
)

// Orchestrator handles vector search and candidate filtering
type Orchestrator struct {
	embeddingProvider embedding.EmbeddingProvider
	index             vectorindex.Index
	logger            *log.Logger
}

// NewOrchestrator creates a new search orchestrator
func NewOrchestrator(embeddingProvider embedding.EmbeddingProvider, index vectorindex.Index, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		embeddingProvider: embeddingProvider,
		index:             index,
		logger:            logger,
	}
}

// Config encapsulates search parameters
type Config struct {
	ScoreThreshold float64
	TopK           int
	Weights        ConfidenceWeights
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		ScoreThreshold: 0.35,
		TopK:           5,
		Weights:        DefaultConfidenceWeights(),
	}
}

// Result carries the retrieval outcome and the signals behind its
// confidence score
type Result struct {
	Passages   []store.Passage
	Sufficient bool
	Confidence float64
	Top        float64
	Margin     float64
	Coverage   float64
}

// EmbedQuery turns the query into a vector via the embedding provider
func (o *Orchestrator) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	res, err := o.embeddingProvider.Generate(ctx, query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	return res.Embedding.Values, nil
}

// Retrieve runs vector search and gates the outcome on retrieval
// confidence. An insufficient result is not an error: it carries
// Sufficient=false, zero confidence and no passages.
func (o *Orchestrator) Retrieve(ctx context.Context, query string, vector []float32, config Config) (*Result, error) {
	passages, err := o.index.Search(ctx, vector, config.TopK, 0)
	if err != nil {
		o.logger.Printf("[ERROR] Vector search failed: %v", err)
		return nil, err
	}

	o.logger.Printf("[DEBUG] Raw search results: %d passages", len(passages))

	kept := o.filterCandidates(passages, config.ScoreThreshold)
	if len(kept) == 0 {
		o.logger.Printf("[DEBUG] No passage cleared threshold %.2f, insufficient context", config.ScoreThreshold)
		return &Result{Sufficient: false, Confidence: 0}, nil
	}

	top := float64(kept[0].Score)
	margin := Margin(scoresOf(kept))
	coverage := Coverage(query, kept)
	confidence := Confidence(config.Weights, top, margin, coverage)

	o.logger.Printf("[DEBUG] Retrieval confidence %.4f (top=%.4f margin=%.4f coverage=%.4f)",
		confidence, top, margin, coverage)

	return &Result{
		Passages:   kept,
		Sufficient: true,
		Confidence: confidence,
		Top:        top,
		Margin:     margin,
		Coverage:   coverage,
	}, nil
}

// Execute runs the full embed-then-retrieve sequence
func (o *Orchestrator) Execute(ctx context.Context, query string, config Config) (*Result, error) {
	vector, err := o.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return o.Retrieve(ctx, query, vector, config)
}

func (o *Orchestrator) filterCandidates(passages []store.Passage, threshold float64) []store.Passage {
	var kept []store.Passage
	seen := make(map[string]bool)

	for i, p := range passages {
		if float64(p.Score) >= threshold {
			if seen[p.ChunkID] {
				continue
			}
			seen[p.ChunkID] = true
			kept = append(kept, p)
			o.logger.Printf("[DEBUG] Candidate %d: Score=%.4f [KEEP]", i+1, p.Score)
		} else {
			o.logger.Printf("[DEBUG] Candidate %d: Score=%.4f [FILTERED]", i+1, p.Score)
		}
	}

	return kept
}

func scoresOf(passages []store.Passage) []float64 {
	scores := make([]float64, len(passages))
	for i, p := range passages {
		scores[i] = float64(p.Score)
	}
	return scores
}
