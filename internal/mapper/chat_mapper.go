package mapper

import (
	"encoding/json"
	"time"

	"banking-assistant-be/internal/entity"
	"banking-assistant-be/internal/model"
	"banking-assistant-be/pkg/store"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:        s.Id,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: s.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:        s.Id,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *ChatMapper) ChatSessionsToEntities(sessions []*model.ChatSession) []*entity.ChatSession {
	entities := make([]*entity.ChatSession, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ChatSessionToEntity(s)
	}
	return entities
}

// Turn Mappers

func (m *ChatMapper) ChatTurnToEntity(t *model.ChatTurn) *entity.ChatTurn {
	if t == nil {
		return nil
	}

	var deletedAt *time.Time
	if t.DeletedAt.Valid {
		d := t.DeletedAt.Time
		deletedAt = &d
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		u := t.UpdatedAt
		updatedAt = &u
	}

	var sources []store.SourceRef
	if len(t.Sources) > 0 {
		// Unreadable source JSON degrades to an answer without citations
		_ = json.Unmarshal(t.Sources, &sources)
	}

	return &entity.ChatTurn{
		Id:            t.Id,
		ChatSessionId: t.ChatSessionId,
		Role:          t.Role,
		Content:       t.Content,
		Confidence:    t.Confidence,
		Tier:          t.Tier,
		Escalated:     t.Escalated,
		Sources:       sources,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     t.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatTurnToModel(t *entity.ChatTurn) *model.ChatTurn {
	if t == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if t.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *t.DeletedAt, Valid: true}
	} else if t.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	sources := datatypes.JSON("[]")
	if len(t.Sources) > 0 {
		if raw, err := json.Marshal(t.Sources); err == nil {
			sources = datatypes.JSON(raw)
		}
	}

	return &model.ChatTurn{
		Id:            t.Id,
		ChatSessionId: t.ChatSessionId,
		Role:          t.Role,
		Content:       t.Content,
		Confidence:    t.Confidence,
		Tier:          t.Tier,
		Escalated:     t.Escalated,
		Sources:       sources,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

func (m *ChatMapper) ChatTurnsToEntities(turns []*model.ChatTurn) []*entity.ChatTurn {
	entities := make([]*entity.ChatTurn, len(turns))
	for i, t := range turns {
		entities[i] = m.ChatTurnToEntity(t)
	}
	return entities
}

func (m *ChatMapper) ChatTurnsToModels(turns []*entity.ChatTurn) []*model.ChatTurn {
	models := make([]*model.ChatTurn, len(turns))
	for i, t := range turns {
		models[i] = m.ChatTurnToModel(t)
	}
	return models
}
