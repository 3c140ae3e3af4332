package history

import (
	"context"

	"banking-assistant-be/internal/constant"
	"banking-assistant-be/internal/entity"
	"banking-assistant-be/internal/repository/specification"
	"banking-assistant-be/internal/repository/unitofwork"
	"banking-assistant-be/pkg/llm"
	"banking-assistant-be/pkg/rag/memory"
	"banking-assistant-be/pkg/store"

	"github.com/google/uuid"
)

// Loader rebuilds conversation context for the answering model
type Loader struct {
	uowFactory unitofwork.RepositoryFactory
	windows    *memory.Manager
}

// NewLoader creates a new history loader
func NewLoader(uowFactory unitofwork.RepositoryFactory, windows *memory.Manager) *Loader {
	return &Loader{
		uowFactory: uowFactory,
		windows:    windows,
	}
}

// LoadWindow returns the session's retained exchanges, oldest first,
// rebuilding the window from the persisted transcript when the in-memory
// copy has expired
func (l *Loader) LoadWindow(ctx context.Context, sessionId uuid.UUID) ([]store.Turn, error) {
	if turns := l.windows.Window(sessionId.String()); turns != nil {
		return turns, nil
	}

	uow := l.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	turns := pairTurns(rows)
	l.windows.Seed(sessionId.String(), turns)
	return l.windows.Window(sessionId.String()), nil
}

// pairTurns folds the role-tagged transcript rows back into exchanges.
// A user row opens an exchange, the next assistant row closes it; an
// unanswered trailing question is dropped.
func pairTurns(rows []*entity.ChatTurn) []store.Turn {
	var turns []store.Turn
	var pending *store.Turn

	for _, row := range rows {
		switch row.Role {
		case constant.ChatTurnRoleUser:
			t := store.Turn{Question: row.Content, At: row.CreatedAt}
			pending = &t
		case constant.ChatTurnRoleAssistant:
			if pending == nil {
				continue
			}
			pending.Answer = row.Content
			pending.Sources = row.Sources
			turns = append(turns, *pending)
			pending = nil
		}
	}

	return turns
}

// ToMessages flattens exchanges into the message list the answering model
// consumes, oldest first
func ToMessages(turns []store.Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns)*2)
	for _, t := range turns {
		messages = append(messages, llm.Message{
			Role:    constant.ChatTurnRoleUser,
			Content: t.Question,
		})
		if t.Answer != "" {
			messages = append(messages, llm.Message{
				Role:    constant.ChatTurnRoleAssistant,
				Content: t.Answer,
			})
		}
	}
	return messages
}
