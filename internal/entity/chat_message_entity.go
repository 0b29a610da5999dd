package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one persisted turn of a session. Messages are append-only
// and only ever removed as part of a whole-session delete.
type ChatMessage struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Role      string
	Content   string
	Meta      map[string]interface{}
	CreatedAt time.Time
}
