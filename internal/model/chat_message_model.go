package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatMessage struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Role      string         `gorm:"type:text;not null"`
	Content   string         `gorm:"type:text;not null"`
	Meta      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}

func (ChatMessage) TableName() string {
	return chatHistoryTable
}
