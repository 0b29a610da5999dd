package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionTitle struct {
	SessionId uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (SessionTitle) TableName() string {
	return sessionTitlesTable
}
