// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"banking-assistant-be/internal/dto"
	"banking-assistant-be/internal/entity"
	"banking-assistant-be/internal/repository/specification"
	"banking-assistant-be/internal/repository/unitofwork"
	"banking-assistant-be/pkg/chunking"
	"banking-assistant-be/pkg/embedding"
	"banking-assistant-be/pkg/events"
	pktNats "banking-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	chunker           *chunking.Chunker
	eventPublisher    *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	chunker *chunking.Chunker,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		chunker:           chunker,
		eventPublisher:    eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing document ingest for DocumentId: %s", payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to get document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if document == nil {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted? Ack.
		return
	}

	log.Printf("[INFO] Chunking document %s (content length: %d)", payload.DocumentId, len(document.Content))

	content := document.Content
	if document.ContentType == "csv" {
		rendered, err := chunking.RenderCSV(content)
		if err != nil {
			// Malformed CSV still carries text, chunk it as prose
			log.Printf("[WARN] Failed to render CSV for document %s: %v", payload.DocumentId, err)
		} else {
			content = rendered
		}
	}

	chunks := cs.chunker.Chunk(chunking.Document{
		ID:      document.Id.String(),
		Name:    document.Name,
		Content: content,
	})
	log.Printf("[INFO] Content split into %d chunks", len(chunks))

	newChunks := make([]*entity.DocumentChunk, 0, len(chunks))

	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(ctx, chunk.Text, "RETRIEVAL_DOCUMENT")
		if err != nil {
			if embedding.IsTransient(err) {
				log.Printf("[ERROR] Transient embedding failure on chunk %d of document %s: %v", i, payload.DocumentId, err)
				msg.Nack() // Redeliver, the provider may recover
				return
			}
			log.Printf("[ERROR] Embedding rejected chunk %d of document %s: %v", i, payload.DocumentId, err)
			cs.markFailed(ctx, document)
			msg.Ack() // Permanent failure, retrying cannot help
			return
		}

		row := &entity.DocumentChunk{
			Id:             uuid.New(),
			DocumentId:     document.Id,
			ChunkIndex:     chunk.Index,
			Content:        chunk.Text,
			TokenCount:     chunk.Tokens,
			Kind:           string(chunk.Kind),
			Degraded:       chunk.DegradedTable,
			EmbeddingValue: res.Embedding.Values,
			CreatedAt:      time.Now(),
		}
		if chunk.Table != nil {
			row.TableId = chunk.Table.TableID
			row.TableHeader = chunk.Table.Header
			row.RowStart = chunk.Table.RowStart
			row.RowEnd = chunk.Table.RowEnd
		}
		newChunks = append(newChunks, row)
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	log.Printf("[INFO] Deleting old chunks for document %s", payload.DocumentId)
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Creating %d new chunks for document %s", len(newChunks), payload.DocumentId)
	if len(newChunks) > 0 {
		if err := uow.DocumentChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			log.Printf("[ERROR] Failed to create bulk chunks: %v", err)
			msg.Nack()
			return
		}
	}

	now := time.Now()
	document.Status = entity.DocumentStatusIndexed
	document.ChunkCount = len(newChunks)
	document.UpdatedAt = &now
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		log.Printf("[ERROR] Failed to update document status: %v", err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	// Audit trail, auxiliary to the ingest itself
	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.EventDocumentIndexed,
			Data: map[string]interface{}{
				"document_id": document.Id,
				"name":        document.Name,
				"chunks":      len(newChunks),
			},
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish DOCUMENT_INDEXED event: %v", err)
		}
	}

	log.Printf("[SUCCESS] Document processed: %d chunks for DocumentId: %s", len(newChunks), payload.DocumentId)
	msg.Ack()
}

// markFailed records a permanent ingest failure on the document row.
// Best effort, the message is acked either way.
func (cs *consumerService) markFailed(ctx context.Context, document *entity.Document) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()
	document.Status = entity.DocumentStatusFailed
	document.UpdatedAt = &now
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		log.Printf("[ERROR] Failed to mark document %s as failed: %v", document.Id, err)
	}
}
