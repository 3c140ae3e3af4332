package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"banking-assistant-be/internal/config"
	"banking-assistant-be/internal/constant"
	"banking-assistant-be/internal/dto"
	"banking-assistant-be/internal/entity"
	"banking-assistant-be/internal/repository/specification"
	"banking-assistant-be/internal/repository/unitofwork"
	"banking-assistant-be/pkg/embedding"
	"banking-assistant-be/pkg/events"
	"banking-assistant-be/pkg/llm"
	pktNats "banking-assistant-be/pkg/nats"
	"banking-assistant-be/pkg/rag/executor"
	"banking-assistant-be/pkg/rag/history"
	ragmemory "banking-assistant-be/pkg/rag/memory"
	"banking-assistant-be/pkg/rag/router"
	"banking-assistant-be/pkg/rag/search"
	"banking-assistant-be/pkg/store"
	"banking-assistant-be/pkg/vectorindex"

	"github.com/google/uuid"
)

// IAssistantService defines the assistant service interface
type IAssistantService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error)
	GetHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetHistoryResponse, error)
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
}

// assistantService coordinates the answer pipeline and the persisted
// conversation transcript
type assistantService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	llmLogger      *log.Logger

	// Domain components
	windows       *ragmemory.Manager
	historyLoader *history.Loader
	pipeline      *executor.Pipeline
}

// NewAssistantService creates the assistant service with all domain components
func NewAssistantService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	answerModel llm.AnswerModel,
	eventPublisher *pktNats.Publisher,
	ragLogPath string,
	retrieval config.RetrievalConfig,
) IAssistantService {

	llmLogger := initLLMLogger(ragLogPath)

	index := vectorindex.NewPgvectorIndex(uowFactory, llmLogger)
	windows := ragmemory.NewManager(retrieval.MemoryWindow, llmLogger)
	historyLoader := history.NewLoader(uowFactory, windows)
	orchestrator := search.NewOrchestrator(embeddingProvider, index, llmLogger)

	routerConfig := router.DefaultConfig()
	if retrieval.RouterThreshold > 0 {
		routerConfig.Threshold = retrieval.RouterThreshold
	}
	complexityRouter := router.NewComplexityRouter(routerConfig, llmLogger)

	pipelineConfig := executor.DefaultConfig()
	if retrieval.TopK > 0 {
		pipelineConfig.Search.TopK = retrieval.TopK
	}
	if retrieval.ScoreThreshold > 0 {
		pipelineConfig.Search.ScoreThreshold = retrieval.ScoreThreshold
	}
	if retrieval.EscalationThreshold > 0 {
		pipelineConfig.EscalationThreshold = retrieval.EscalationThreshold
	}
	if retrieval.RetryAttempts > 0 {
		pipelineConfig.RetryAttempts = retrieval.RetryAttempts
	}

	pipeline := executor.NewPipeline(
		orchestrator,
		complexityRouter,
		answerModel,
		windows,
		historyLoader,
		pipelineConfig,
		llmLogger,
	)

	return &assistantService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		llmLogger:      llmLogger,

		windows:       windows,
		historyLoader: historyLoader,
		pipeline:      pipeline,
	}
}

func initLLMLogger(logPath string) *log.Logger {
	if logPath == "" {
		logPath = filepath.Join(".", "logs", "llm_rag.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// CreateSession creates a new chat session
func (cs *assistantService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSession := entity.ChatSession{
		Id:        uuid.New(),
		Title:     "Unnamed session",
		CreatedAt: time.Now(),
	}

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: chatSession.Id}, nil
}

// GetAllSessions retrieves all chat sessions
func (cs *assistantService) GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(chatSessions))
	for _, s := range chatSessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	return response, nil
}

// GetHistory retrieves the persisted transcript for a session
func (cs *assistantService) GetHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found")
	}

	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.GetHistoryResponse, 0, len(turns))
	for _, turn := range turns {
		resp = append(resp, &dto.GetHistoryResponse{
			Id:        turn.Id,
			Role:      turn.Role,
			Content:   turn.Content,
			CreatedAt: turn.CreatedAt,
			Sources:   sourcesToDTO(turn.Sources),
		})
	}

	return resp, nil
}

// Ask processes a user query and returns the grounded answer
func (cs *assistantService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: req.SessionId})
	if err != nil {
		return nil, err
	}
	if chatSession == nil {
		return nil, fmt.Errorf("session not found")
	}

	turnCount, err := uow.ChatTurnRepository().Count(ctx,
		specification.ByChatSessionID{ChatSessionID: req.SessionId},
	)
	if err != nil {
		return nil, err
	}
	updateSessionTitle := turnCount == 0

	var options []executor.AskOption
	if req.TopK > 0 {
		options = append(options, executor.WithTopK(req.TopK))
	}
	if req.ScoreThreshold != nil {
		options = append(options, executor.WithScoreThreshold(*req.ScoreThreshold))
	}

	answer, err := cs.pipeline.Ask(ctx, req.SessionId, req.Query, options...)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userTurn := entity.ChatTurn{
		Id:            uuid.New(),
		ChatSessionId: req.SessionId,
		Role:          constant.ChatTurnRoleUser,
		Content:       req.Query,
		CreatedAt:     now,
	}
	assistantTurn := entity.ChatTurn{
		Id:            uuid.New(),
		ChatSessionId: req.SessionId,
		Role:          constant.ChatTurnRoleAssistant,
		Content:       answer.Text,
		Confidence:    answer.Confidence,
		Tier:          string(answer.TierUsed),
		Escalated:     answer.Escalated,
		Sources:       answer.Sources,
		CreatedAt:     now.Add(1 * time.Second),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatTurnRepository().Create(ctx, &userTurn); err != nil {
		return nil, err
	}
	if err := uow.ChatTurnRepository().Create(ctx, &assistantTurn); err != nil {
		return nil, err
	}

	if updateSessionTitle {
		chatSession.Title = req.Query
		chatSession.UpdatedAt = &now
		if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// Audit trail, auxiliary to the answer itself
	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.EventAnswerGenerated,
			Data: map[string]interface{}{
				"session_id": req.SessionId,
				"tier_used":  string(answer.TierUsed),
				"confidence": answer.Confidence,
				"escalated":  answer.Escalated,
				"grounded":   answer.Sufficient,
				"sources":    len(answer.Sources),
			},
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.llmLogger.Printf("[WARN] Failed to publish ANSWER_GENERATED event: %v", err)
		}
	}

	return &dto.AskResponse{
		SessionId:  req.SessionId,
		Answer:     answer.Text,
		Sources:    sourcesToDTO(answer.Sources),
		Confidence: answer.Confidence,
		TierUsed:   string(answer.TierUsed),
		Escalated:  answer.Escalated,
		Grounded:   answer.Sufficient,
	}, nil
}

// DeleteSession destroys the session, its transcript and its window
func (cs *assistantService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("session not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatTurnRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	// Drop the in-memory window only after the transcript is gone
	cs.windows.Reset(sessionId.String())

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.EventSessionDeleted,
			Data: map[string]interface{}{
				"session_id": sessionId,
			},
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.llmLogger.Printf("[WARN] Failed to publish SESSION_DELETED event: %v", err)
		}
	}

	return nil
}

func sourcesToDTO(sources []store.SourceRef) []dto.SourceDTO {
	out := make([]dto.SourceDTO, 0, len(sources))
	for _, s := range sources {
		documentId, _ := uuid.Parse(s.DocumentID)
		chunkId, _ := uuid.Parse(s.ChunkID)
		out = append(out, dto.SourceDTO{
			DocumentId:   documentId,
			DocumentName: s.DocumentName,
			ChunkId:      chunkId,
			Score:        float64(s.Score),
		})
	}
	return out
}
