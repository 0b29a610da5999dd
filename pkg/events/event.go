package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_TITLE_UPDATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used across the service.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes published by the chat backend.
const (
	TypeTitleUpdated   = "CHAT_TITLE_UPDATED"
	TypeSessionDeleted = "CHAT_SESSION_DELETED"
)

func NewTitleUpdated(sessionID, title string) BaseEvent {
	return BaseEvent{
		Type: TypeTitleUpdated,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"title":      title,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionDeleted(sessionID string) BaseEvent {
	return BaseEvent{
		Type: TypeSessionDeleted,
		Data: map[string]interface{}{
			"session_id": sessionID,
		},
		OccurredAt: time.Now(),
	}
}
