package entity

import (
	"time"

	"github.com/google/uuid"
)

// SessionTitle maps a session id to its generated label. At most one row per
// session; the session itself has no table and exists implicitly for as long
// as a message or title row references it.
type SessionTitle struct {
	SessionId uuid.UUID
	Title     string
	UpdatedAt time.Time
}
