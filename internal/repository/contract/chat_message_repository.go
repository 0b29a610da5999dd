package contract

import (
	"context"
	"time"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// SessionActivity is one row of the session listing: a session id together
// with the timestamp of its most recent message.
type SessionActivity struct {
	SessionId    uuid.UUID
	LastActivity time.Time
}

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// ListSessionActivity returns every session id that still has messages,
	// ordered by the timestamp of its latest message ascending.
	ListSessionActivity(ctx context.Context) ([]SessionActivity, error)
}
