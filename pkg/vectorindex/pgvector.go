package vectorindex

import (
	"context"
	"log"

	"banking-assistant-be/internal/repository/contract"
	"banking-assistant-be/internal/repository/specification"
	"banking-assistant-be/internal/repository/unitofwork"
	"banking-assistant-be/pkg/store"

	"github.com/google/uuid"
)

// PgvectorIndex answers similarity queries from the document_chunks table
// using pgvector cosine distance.
type PgvectorIndex struct {
	factory unitofwork.RepositoryFactory
	logger  *log.Logger
}

func NewPgvectorIndex(factory unitofwork.RepositoryFactory, logger *log.Logger) *PgvectorIndex {
	return &PgvectorIndex{
		factory: factory,
		logger:  logger,
	}
}

var _ Index = (*PgvectorIndex)(nil)

func (p *PgvectorIndex) Search(ctx context.Context, vector []float32, topK int, minScore float64) ([]store.Passage, error) {
	uow := p.factory.NewUnitOfWork(ctx)

	scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(ctx, vector, topK, minScore)
	if err != nil {
		p.logger.Printf("[ERROR] Vector search failed: %v", err)
		return nil, err
	}
	if len(scored) == 0 {
		return nil, nil
	}

	passages := make([]store.Passage, len(scored))
	for i, s := range scored {
		c := s.Chunk
		passages[i] = store.Passage{
			ChunkID:     c.Id.String(),
			DocumentID:  c.DocumentId.String(),
			Content:     c.Content,
			Score:       float32(s.Similarity),
			Kind:        c.Kind,
			TableID:     c.TableId,
			TableHeader: c.TableHeader,
			RowStart:    c.RowStart,
			RowEnd:      c.RowEnd,
			Degraded:    c.Degraded,
		}
	}

	// Hydrate with document names
	if err := p.hydrateNames(ctx, uow, scored, passages); err != nil {
		p.logger.Printf("[WARN] Failed to hydrate document names: %v", err)
	}

	return passages, nil
}

func (p *PgvectorIndex) hydrateNames(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	scored []*contract.ScoredDocumentChunk,
	passages []store.Passage,
) error {

	seen := make(map[uuid.UUID]bool)
	var documentIds []uuid.UUID
	for _, s := range scored {
		if !seen[s.Chunk.DocumentId] {
			documentIds = append(documentIds, s.Chunk.DocumentId)
			seen[s.Chunk.DocumentId] = true
		}
	}

	documents, err := uow.DocumentRepository().FindAll(ctx, specification.ByIDs{IDs: documentIds})
	if err != nil {
		return err
	}

	nameMap := make(map[string]string)
	for _, d := range documents {
		nameMap[d.Id.String()] = d.Name
	}

	for i := range passages {
		if name, ok := nameMap[passages[i].DocumentID]; ok {
			passages[i].DocumentName = name
		} else {
			passages[i].DocumentName = "Untitled Document"
		}
	}

	return nil
}
