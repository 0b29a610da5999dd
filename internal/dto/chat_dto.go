package dto

import (
	"time"

	"github.com/google/uuid"
)

// StreamChatRequest is the payload for starting or continuing a chat turn.
// SessionId is optional: when absent, a new session is minted.
type StreamChatRequest struct {
	SessionId *uuid.UUID `json:"session_id"`
	Message   string     `json:"message" validate:"required"`
}

// StreamChatResult summarizes a completed streamed chat turn.
type StreamChatResult struct {
	SessionId uuid.UUID `json:"session_id"`
	MessageId uuid.UUID `json:"message_id"`
	ReplyId   uuid.UUID `json:"reply_id"`
	New       bool      `json:"new_session"`
}

// SessionListItem is one row of the session sidebar.
type SessionListItem struct {
	SessionId    uuid.UUID `json:"session_id"`
	Title        *string   `json:"title"`
	LastActivity time.Time `json:"last_activity"`
}

// ChatHistoryItem is one message in a session transcript.
type ChatHistoryItem struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TitleResponse carries a session's title; Title is null when no title
// has been generated yet.
type TitleResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Title     *string   `json:"title"`
}

// RenameTitleRequest asks for a session title to be regenerated from a
// provided seed text.
type RenameTitleRequest struct {
	Seed string `json:"seed" validate:"required"`
}

// TitleJobMessage is the queue payload for asynchronous title work.
type TitleJobMessage struct {
	SessionId uuid.UUID `json:"session_id"`
	Seed      string    `json:"seed"`
	Reason    string    `json:"reason"`
}

// Title job reasons.
const (
	TitleReasonInitial = "initial"
	TitleReasonRename  = "rename"
)
