package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string         `gorm:"type:varchar(255);not null"`
	ContentType string         `gorm:"type:varchar(50);not null;default:'text'"`
	Content     string         `gorm:"type:text"`
	SizeBytes   int64          `gorm:"default:0"`
	ChunkCount  int            `gorm:"default:0"`
	Status      string         `gorm:"type:varchar(50);not null;default:'pending'"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
