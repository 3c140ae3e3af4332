package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatTurn struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Role          string         `gorm:"type:varchar(50);not null"`
	Content       string         `gorm:"type:text;not null"`
	Confidence    float64        `gorm:"default:0"`
	Tier          string         `gorm:"type:varchar(20)"`
	Escalated     bool           `gorm:"default:false"`
	Sources       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}
