package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"banking-assistant-be/internal/entity"
	"banking-assistant-be/internal/repository/specification"
	"banking-assistant-be/internal/repository/unitofwork"
	"banking-assistant-be/pkg/database"
	"banking-assistant-be/pkg/store"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

// testEmbedding builds a deterministic 768-dim vector. Two calls with the
// same seed produce the same vector, so an exact-match search scores ~1.0.
func testEmbedding(seed float32) []float32 {
	v := make([]float32, 768)
	for i := range v {
		v[i] = seed + float32(i%7)*0.01
	}
	return v
}

func TestAssistantStorageFlow(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.DocumentRepository())
	assert.NotNil(t, uow.DocumentChunkRepository())
	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.ChatTurnRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	ctx := context.Background()
	documentId := uuid.New()

	t.Run("Index Document With Chunks Transactionally", func(t *testing.T) {
		document := &entity.Document{
			Id:          documentId,
			Name:        "integration-rates-" + uuid.New().String() + ".md",
			ContentType: "markdown",
			Content:     "| account | rate |\n| checking | 0.1% |\n| savings | 0.5% |",
			SizeBytes:   56,
			Status:      entity.DocumentStatusPending,
			CreatedAt:   time.Now(),
		}
		err := uow.DocumentRepository().Create(ctx, document)
		assert.NoError(t, err)

		chunks := []*entity.DocumentChunk{
			{
				Id:             uuid.New(),
				DocumentId:     documentId,
				ChunkIndex:     0,
				Content:        "| account | rate |\n| checking | 0.1% |",
				TokenCount:     8,
				Kind:           "table",
				TableId:        "t0",
				TableHeader:    "| account | rate |",
				RowStart:       1,
				RowEnd:         1,
				EmbeddingValue: testEmbedding(0.2),
				CreatedAt:      time.Now(),
			},
			{
				Id:             uuid.New(),
				DocumentId:     documentId,
				ChunkIndex:     1,
				Content:        "| account | rate |\n| savings | 0.5% |",
				TokenCount:     8,
				Kind:           "table",
				TableId:        "t0",
				TableHeader:    "| account | rate |",
				RowStart:       2,
				RowEnd:         2,
				EmbeddingValue: testEmbedding(0.9),
				CreatedAt:      time.Now(),
			},
		}

		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		err = uow.DocumentChunkRepository().CreateBulk(ctx, chunks)
		assert.NoError(t, err)

		now := time.Now()
		document.Status = entity.DocumentStatusIndexed
		document.ChunkCount = len(chunks)
		document.UpdatedAt = &now
		err = uow.DocumentRepository().Update(ctx, document)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		count, err := uow.DocumentChunkRepository().Count(ctx, specification.ByDocumentID{DocumentID: documentId})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("Vector Search Returns Closest Chunk First", func(t *testing.T) {
		scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(ctx, testEmbedding(0.2), 5, 0.0)
		assert.NoError(t, err)
		if assert.NotEmpty(t, scored) {
			top := scored[0]
			assert.Equal(t, documentId, top.Chunk.DocumentId)
			assert.Equal(t, 0, top.Chunk.ChunkIndex)
			// Exact match, cosine similarity should be essentially 1
			assert.InDelta(t, 1.0, top.Similarity, 0.001)
			assert.Equal(t, "table", top.Chunk.Kind)
			assert.Equal(t, "| account | rate |", top.Chunk.TableHeader)
		}
	})

	t.Run("Persist Conversation Turns Transactionally", func(t *testing.T) {
		sessionId := uuid.New()
		session := &entity.ChatSession{
			Id:        sessionId,
			Title:     "Unnamed session",
			CreatedAt: time.Now(),
		}
		err := uow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		now := time.Now()
		userTurn := &entity.ChatTurn{
			Id:            uuid.New(),
			ChatSessionId: sessionId,
			Role:          "user",
			Content:       "What is the savings rate?",
			CreatedAt:     now,
		}
		assistantTurn := &entity.ChatTurn{
			Id:            uuid.New(),
			ChatSessionId: sessionId,
			Role:          "assistant",
			Content:       "The savings rate is 0.5%.",
			Confidence:    0.82,
			Tier:          "light",
			Sources: []store.SourceRef{
				{DocumentID: documentId.String(), DocumentName: "rates.md", Score: 0.82},
			},
			CreatedAt: now.Add(1 * time.Second),
		}

		err = uow.ChatTurnRepository().Create(ctx, userTurn)
		assert.NoError(t, err)
		err = uow.ChatTurnRepository().Create(ctx, assistantTurn)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		count, err := uow.ChatTurnRepository().Count(ctx, specification.ByChatSessionID{ChatSessionID: sessionId})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)

		turns, err := uow.ChatTurnRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: sessionId},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		assert.NoError(t, err)
		if assert.Len(t, turns, 2) {
			assert.Equal(t, "user", turns[0].Role)
			assert.Equal(t, "assistant", turns[1].Role)
			if assert.Len(t, turns[1].Sources, 1) {
				assert.Equal(t, documentId.String(), turns[1].Sources[0].DocumentID)
			}
		}

		// Cleanup
		err = uow.ChatTurnRepository().DeleteByChatSessionId(ctx, sessionId)
		assert.NoError(t, err)
		err = uow.ChatSessionRepository().Delete(ctx, sessionId)
		assert.NoError(t, err)
	})

	t.Run("Cleanup Document", func(t *testing.T) {
		err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, documentId)
		assert.NoError(t, err)
		err = uow.DocumentRepository().Delete(ctx, documentId)
		assert.NoError(t, err)
	})
}
