package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

type ByDocumentIDs struct {
	DocumentIDs []uuid.UUID
}

func (s ByDocumentIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id IN ?", s.DocumentIDs)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByName struct {
	Name string
}

func (s ByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

type ByTableID struct {
	TableID string
}

func (s ByTableID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("table_id = ?", s.TableID)
}

type ByKind struct {
	Kind string
}

func (s ByKind) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("kind = ?", s.Kind)
}
