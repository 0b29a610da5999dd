package contract

import (
	"context"

	"ai-chat-be/internal/entity"

	"github.com/google/uuid"
)

type SessionTitleRepository interface {
	// Upsert writes the title in a single INSERT ... ON CONFLICT statement so
	// a concurrent reader sees either the prior row or the new one, never a
	// partial write.
	Upsert(ctx context.Context, title *entity.SessionTitle) error

	// FindBySessionId returns nil (not an error) when no row exists yet.
	FindBySessionId(ctx context.Context, sessionId uuid.UUID) (*entity.SessionTitle, error)

	// Delete is a no-op when the row is already gone.
	Delete(ctx context.Context, sessionId uuid.UUID) error

	Count(ctx context.Context, sessionId uuid.UUID) (int64, error)
}
