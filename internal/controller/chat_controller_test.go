package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	sessions []*dto.SessionListItem
	history  []*dto.ChatHistoryItem
	deleted  []uuid.UUID
}

func (s *stubChatService) StreamChat(ctx context.Context, req *dto.StreamChatRequest, sink service.StreamSink) (*dto.StreamChatResult, error) {
	sessionId := uuid.New()
	if req.SessionId != nil {
		sessionId = *req.SessionId
	}
	if err := sink.Session(sessionId, req.SessionId == nil); err != nil {
		return nil, err
	}
	if err := sink.Delta("hello"); err != nil {
		return nil, err
	}
	result := &dto.StreamChatResult{SessionId: sessionId, New: req.SessionId == nil}
	return result, sink.Done(result)
}

func (s *stubChatService) GetChatHistory(context.Context, uuid.UUID) ([]*dto.ChatHistoryItem, error) {
	return s.history, nil
}

func (s *stubChatService) ListSessions(context.Context) ([]*dto.SessionListItem, error) {
	return s.sessions, nil
}

func (s *stubChatService) DeleteSession(_ context.Context, sessionId uuid.UUID) error {
	s.deleted = append(s.deleted, sessionId)
	return nil
}

type stubTitleService struct {
	titles map[uuid.UUID]string
}

func (s *stubTitleService) GenerateTitle(_ context.Context, sessionId uuid.UUID, seed string) (string, error) {
	if s.titles == nil {
		s.titles = map[uuid.UUID]string{}
	}
	s.titles[sessionId] = "Generated From " + seed
	return s.titles[sessionId], nil
}

func (s *stubTitleService) QueueGeneration(context.Context, uuid.UUID, string) error { return nil }
func (s *stubTitleService) QueueRename(context.Context, uuid.UUID, string) error     { return nil }

func (s *stubTitleService) GetTitle(_ context.Context, sessionId uuid.UUID) (*string, error) {
	if title, ok := s.titles[sessionId]; ok {
		return &title, nil
	}
	return nil, nil
}

func (s *stubTitleService) Delete(context.Context, uuid.UUID) error { return nil }

func newTestApp(chat *stubChatService, title *stubTitleService) *fiber.App {
	app := fiber.New()
	NewChatController(chat, title).RegisterRoutes(app.Group("/api"))
	return app
}

func TestGetSessions(t *testing.T) {
	title := "Tides"
	chat := &stubChatService{sessions: []*dto.SessionListItem{
		{SessionId: uuid.New(), Title: nil, LastActivity: time.Now().Add(-time.Hour)},
		{SessionId: uuid.New(), Title: &title, LastActivity: time.Now()},
	}}
	app := newTestApp(chat, &stubTitleService{})

	req := httptest.NewRequest("GET", "/api/chat/v1/sessions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var envelope struct {
		Success bool                   `json:"success"`
		Data    []*dto.SessionListItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.True(t, envelope.Success)
	require.Len(t, envelope.Data, 2)
	assert.Nil(t, envelope.Data[0].Title)
	require.NotNil(t, envelope.Data[1].Title)
	assert.Equal(t, "Tides", *envelope.Data[1].Title)
}

func TestGetTitleAbsentIsNull(t *testing.T) {
	app := newTestApp(&stubChatService{}, &stubTitleService{})

	req := httptest.NewRequest("GET", "/api/chat/v1/sessions/"+uuid.NewString()+"/title", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var envelope struct {
		Data dto.TitleResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Nil(t, envelope.Data.Title)
}

func TestGetTitleInvalidId(t *testing.T) {
	app := newTestApp(&stubChatService{}, &stubTitleService{})

	req := httptest.NewRequest("GET", "/api/chat/v1/sessions/not-a-uuid/title", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	chat := &stubChatService{}
	app := newTestApp(chat, &stubTitleService{})
	sessionId := uuid.New()

	req := httptest.NewRequest("DELETE", "/api/chat/v1/sessions/"+sessionId.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, chat.deleted, 1)
	assert.Equal(t, sessionId, chat.deleted[0])
}

func TestRenameTitleRequiresSeed(t *testing.T) {
	app := newTestApp(&stubChatService{}, &stubTitleService{})

	req := httptest.NewRequest("PUT", "/api/chat/v1/sessions/"+uuid.NewString()+"/title", nil)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
