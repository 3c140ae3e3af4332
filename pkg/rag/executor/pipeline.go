package executor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"banking-assistant-be/internal/constant"
	"banking-assistant-be/pkg/embedding"
	"banking-assistant-be/pkg/llm"
	"banking-assistant-be/pkg/rag/history"
	"banking-assistant-be/pkg/rag/memory"
	"banking-assistant-be/pkg/rag/prompt"
	"banking-assistant-be/pkg/rag/router"
	"banking-assistant-be/pkg/rag/search"
	"banking-assistant-be/pkg/rag/state"
	"banking-assistant-be/pkg/store"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

// ErrUnavailable is returned after transient upstream failures exhaust
// their retries. Callers surface it as a typed outage, never as an answer.
var ErrUnavailable = errors.New("assistant temporarily unavailable")

// WindowLoader rebuilds a session's retained exchanges when the in-memory
// window has expired
type WindowLoader interface {
	LoadWindow(ctx context.Context, sessionId uuid.UUID) ([]store.Turn, error)
}

// Config bundles the pipeline tunables
type Config struct {
	Search              search.Config
	EscalationThreshold float64
	RetryAttempts       int
	RetryInitialWait    time.Duration
}

// DefaultConfig returns default pipeline configuration
func DefaultConfig() Config {
	return Config{
		Search:              search.DefaultConfig(),
		EscalationThreshold: 0.4,
		RetryAttempts:       3,
		RetryInitialWait:    200 * time.Millisecond,
	}
}

// AskOption overrides a pipeline tunable for a single query
type AskOption func(*Config)

// WithTopK overrides how many passages are retrieved for this query
func WithTopK(k int) AskOption {
	return func(c *Config) {
		if k > 0 {
			c.Search.TopK = k
		}
	}
}

// WithScoreThreshold overrides the sufficiency threshold for this query
func WithScoreThreshold(threshold float64) AskOption {
	return func(c *Config) {
		if threshold >= 0 && threshold <= 1 {
			c.Search.ScoreThreshold = threshold
		}
	}
}

// Pipeline answers queries over the uploaded document corpus.
// Phase 1: Embed + Retrieve → Phase 2: Confidence Gate →
// Phase 3: Context Assembly → Phase 4: Route + Generate →
// Phase 5: Bounded Escalation
type Pipeline struct {
	orchestrator *search.Orchestrator
	assembler    *search.Assembler
	router       *router.ComplexityRouter
	model        llm.AnswerModel
	states       *state.Manager
	windows      *memory.Manager
	loader       WindowLoader
	config       Config
	logger       *log.Logger
}

// NewPipeline creates the full answer pipeline. loader may be nil when no
// persisted transcript backs the conversation windows.
func NewPipeline(
	orchestrator *search.Orchestrator,
	complexityRouter *router.ComplexityRouter,
	model llm.AnswerModel,
	windows *memory.Manager,
	loader WindowLoader,
	config Config,
	logger *log.Logger,
) *Pipeline {
	return &Pipeline{
		orchestrator: orchestrator,
		assembler:    search.NewAssembler(logger),
		router:       complexityRouter,
		model:        model,
		states:       state.NewManager(logger),
		windows:      windows,
		loader:       loader,
		config:       config,
		logger:       logger,
	}
}

// Answer is the pipeline outcome for one query
type Answer struct {
	Text       string
	Sources    []store.SourceRef
	Confidence float64
	TierUsed   llm.Tier
	Escalated  bool
	Sufficient bool
	Complexity float64
}

// Ask runs one query through the full pipeline. Requests for the same
// session are serialized; the exchange is only recorded in the window
// after the answering call fully succeeds.
func (p *Pipeline) Ask(ctx context.Context, sessionId uuid.UUID, queryText string, options ...AskOption) (*Answer, error) {
	unlock := p.windows.Lock(sessionId.String())
	defer unlock()

	cfg := p.config
	for _, opt := range options {
		opt(&cfg)
	}

	query := &store.Query{
		ID:        uuid.NewString(),
		SessionID: sessionId.String(),
		Text:      queryText,
		State:     store.StateReceived,
	}

	p.logger.Printf("[PIPELINE] Query %s: %s", query.ID, truncate(queryText, 50))

	// ═══════════════════════════════════════════════════════════════
	// PHASE 1: EMBED + RETRIEVE
	// ═══════════════════════════════════════════════════════════════
	p.logger.Printf("[PHASE 1] Embedding and retrieving...")

	vector, err := retryTransient(ctx, cfg, func() ([]float32, error) {
		return p.orchestrator.EmbedQuery(ctx, queryText)
	})
	if err != nil {
		p.advance(query, store.StateUnavailable)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	p.advance(query, store.StateEmbedded)

	result, err := p.orchestrator.Retrieve(ctx, queryText, vector, cfg.Search)
	if err != nil {
		p.advance(query, store.StateUnavailable)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	p.advance(query, store.StateRetrieved)

	// ═══════════════════════════════════════════════════════════════
	// PHASE 2: CONFIDENCE GATE
	// ═══════════════════════════════════════════════════════════════
	if !result.Sufficient {
		p.advance(query, store.StateInsufficientContext)
		p.advance(query, store.StateFallback)
		p.logger.Printf("[PHASE 2] Insufficient context, returning fallback answer")

		return &Answer{
			Text:       constant.InsufficientContextAnswer,
			Sources:    []store.SourceRef{},
			Confidence: 0,
			Sufficient: false,
		}, nil
	}

	p.logger.Printf("[PHASE 2] Context sufficient: %d passages, confidence %.4f",
		len(result.Passages), result.Confidence)

	// ═══════════════════════════════════════════════════════════════
	// PHASE 3: CONTEXT ASSEMBLY
	// ═══════════════════════════════════════════════════════════════
	composed := p.assembler.Compose(result.Passages)
	flavor := prompt.SelectFlavor(result.Passages)
	built := prompt.NewBuilder(flavor, composed, queryText).Build()

	window := p.loadWindow(ctx, sessionId)
	messages := append(history.ToMessages(window), llm.Message{
		Role:    constant.ChatTurnRoleUser,
		Content: built,
	})

	p.advance(query, store.StateContextReady)
	p.logger.Printf("[PHASE 3] Context assembled (%s flavor, %d history turns)", flavor, len(window))

	// ═══════════════════════════════════════════════════════════════
	// PHASE 4: ROUTE + GENERATE
	// ═══════════════════════════════════════════════════════════════
	tier, complexity := p.router.SelectTier(queryText, len(window))
	query.Complexity = complexity
	query.Tier = string(tier)
	p.advance(query, store.StateRouted)

	res, err := p.generate(ctx, cfg, messages, tier)
	if err != nil {
		p.advance(query, store.StateUnavailable)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	p.advance(query, store.StateAnswered)
	p.logger.Printf("[PHASE 4] %s tier answered, self-confidence %.2f", tier, res.SelfConfidence)

	// ═══════════════════════════════════════════════════════════════
	// PHASE 5: BOUNDED ESCALATION
	// ═══════════════════════════════════════════════════════════════
	if tier == llm.TierLight && res.SelfConfidence < cfg.EscalationThreshold {
		p.advance(query, store.StateEscalationNeeded)
		p.advance(query, store.StateRouted)
		p.logger.Printf("[PHASE 5] Self-confidence %.2f below %.2f, escalating once to heavy tier",
			res.SelfConfidence, cfg.EscalationThreshold)

		heavy, herr := p.generate(ctx, cfg, messages, llm.TierHeavy)
		if herr != nil {
			// The light answer already succeeded, keep it
			p.logger.Printf("[WARN] Escalation failed, keeping light answer: %v", herr)
		} else {
			res = heavy
			tier = llm.TierHeavy
			query.Tier = string(tier)
		}
		p.advance(query, store.StateAnswered)
	}

	sources := sourcesOf(result.Passages)
	p.windows.Append(sessionId.String(), store.Turn{
		Question: queryText,
		Answer:   res.Text,
		Sources:  sources,
		At:       time.Now(),
	})

	return &Answer{
		Text:       res.Text,
		Sources:    sources,
		Confidence: result.Confidence,
		TierUsed:   tier,
		Escalated:  query.Escalated,
		Sufficient: true,
		Complexity: complexity,
	}, nil
}

// loadWindow reads the session's retained exchanges, rebuilding them from
// the persisted transcript when the in-memory window has expired
func (p *Pipeline) loadWindow(ctx context.Context, sessionId uuid.UUID) []store.Turn {
	if window := p.windows.Window(sessionId.String()); window != nil {
		return window
	}
	if p.loader == nil {
		return nil
	}

	window, err := p.loader.LoadWindow(ctx, sessionId)
	if err != nil {
		p.logger.Printf("[WARN] Failed to rebuild conversation window: %v", err)
		return nil
	}
	return window
}

func (p *Pipeline) generate(ctx context.Context, cfg Config, messages []llm.Message, tier llm.Tier) (*llm.Result, error) {
	return retryTransient(ctx, cfg, func() (*llm.Result, error) {
		return p.model.Answer(ctx, messages, tier)
	})
}

// advance applies a lifecycle transition; the coded paths only take legal
// edges, so a failure here is a bug worth a loud log
func (p *Pipeline) advance(query *store.Query, next string) {
	if err := p.states.Transition(query, next); err != nil {
		p.logger.Printf("[ERROR] %v", err)
	}
}

// retryTransient retries the call on transient upstream errors with
// exponential backoff. Permanent errors fail immediately.
func retryTransient[T any](ctx context.Context, config Config, op func() (T, error)) (T, error) {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = config.RetryInitialWait
	expo.Multiplier = 2

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !transient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(expo), backoff.WithMaxTries(uint(config.RetryAttempts)))
}

func transient(err error) bool {
	return embedding.IsTransient(err) || llm.IsTransient(err)
}

func sourcesOf(passages []store.Passage) []store.SourceRef {
	sources := make([]store.SourceRef, len(passages))
	for i, p := range passages {
		sources[i] = store.SourceRef{
			DocumentID:   p.DocumentID,
			DocumentName: p.DocumentName,
			ChunkID:      p.ChunkID,
			Score:        p.Score,
			TableID:      p.TableID,
		}
	}
	return sources
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
