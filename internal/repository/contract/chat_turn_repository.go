package contract

import (
	"context"

	"banking-assistant-be/internal/entity"
	"banking-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatTurnRepository interface {
	Create(ctx context.Context, turn *entity.ChatTurn) error
	Update(ctx context.Context, turn *entity.ChatTurn) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatTurn, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
