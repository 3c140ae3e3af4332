// FILE: internal/service/document_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"banking-assistant-be/internal/dto"
	"banking-assistant-be/internal/entity"
	"banking-assistant-be/internal/repository/specification"
	"banking-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Upload(ctx context.Context, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context, search string) ([]*dto.ShowDocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*dto.DocumentStatsResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
	}
}

func (c *documentService) Upload(ctx context.Context, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	document := entity.Document{
		Id:          uuid.New(),
		Name:        req.Name,
		ContentType: contentTypeOf(req.Mime),
		Content:     req.Content,
		SizeBytes:   int64(len(req.Content)),
		Status:      entity.DocumentStatusPending,
		CreatedAt:   time.Now(),
	}

	err := uow.DocumentRepository().Create(ctx, &document)
	if err != nil {
		return nil, err
	}

	msgPayload := dto.PublishIngestDocumentMessage{
		DocumentId: document.Id,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}

	err = c.publisherService.Publish(ctx, msgJson)
	if err != nil {
		return nil, err
	}

	return &dto.UploadDocumentResponse{
		Id: document.Id,
	}, nil
}

func (c *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil // Not found
	}

	return toShowDocumentResponse(document), nil
}

func (c *documentService) List(ctx context.Context, search string) ([]*dto.ShowDocumentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if search != "" {
		specs = append(specs, specification.DocumentSearchQuery{Query: search})
	}

	documents, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.ShowDocumentResponse, 0, len(documents))
	for _, document := range documents {
		response = append(response, toShowDocumentResponse(document))
	}
	return response, nil
}

func (c *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if document == nil {
		return fmt.Errorf("document not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	// Chunks go first so retrieval never sees orphans
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}

func (c *documentService) Stats(ctx context.Context) (*dto.DocumentStatsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	chunkCount, err := uow.DocumentChunkRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	tableChunks, err := uow.DocumentChunkRepository().Count(ctx, specification.ByKind{Kind: "table"})
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int)
	for _, document := range documents {
		byStatus[document.Status]++
	}

	return &dto.DocumentStatsResponse{
		DocumentCount: len(documents),
		ChunkCount:    int(chunkCount),
		TableChunks:   int(tableChunks),
		ByStatus:      byStatus,
	}, nil
}

func toShowDocumentResponse(document *entity.Document) *dto.ShowDocumentResponse {
	return &dto.ShowDocumentResponse{
		Id:         document.Id,
		Name:       document.Name,
		Mime:       document.ContentType,
		Status:     document.Status,
		ChunkCount: document.ChunkCount,
		CreatedAt:  document.CreatedAt,
		UpdatedAt:  document.UpdatedAt,
	}
}

func contentTypeOf(mime string) string {
	switch strings.ToLower(mime) {
	case "text/markdown":
		return "markdown"
	case "text/csv":
		return "csv"
	default:
		return "text"
	}
}
