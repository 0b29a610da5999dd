package mapper

import (
	"encoding/json"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var meta map[string]interface{}
	if len(msg.Meta) > 0 {
		// Best effort; a malformed meta blob should never block a history read.
		_ = json.Unmarshal(msg.Meta, &meta)
	}

	return &entity.ChatMessage{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		Role:      msg.Role,
		Content:   msg.Content,
		Meta:      meta,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	var meta datatypes.JSON
	if msg.Meta != nil {
		if raw, err := json.Marshal(msg.Meta); err == nil {
			meta = raw
		}
	}

	return &model.ChatMessage{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		Role:      msg.Role,
		Content:   msg.Content,
		Meta:      meta,
		CreatedAt: msg.CreatedAt,
	}
}

// Title Mappers

func (m *ChatMapper) SessionTitleToEntity(t *model.SessionTitle) *entity.SessionTitle {
	if t == nil {
		return nil
	}
	return &entity.SessionTitle{
		SessionId: t.SessionId,
		Title:     t.Title,
		UpdatedAt: t.UpdatedAt,
	}
}

func (m *ChatMapper) SessionTitleToModel(t *entity.SessionTitle) *model.SessionTitle {
	if t == nil {
		return nil
	}
	return &model.SessionTitle{
		SessionId: t.SessionId,
		Title:     t.Title,
		UpdatedAt: t.UpdatedAt,
	}
}
