package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	StreamChat(ctx *fiber.Ctx) error
	GetSessions(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	GetTitle(ctx *fiber.Ctx) error
	RenameTitle(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService  service.IChatService
	titleService service.ITitleService
}

func NewChatController(chatService service.IChatService, titleService service.ITitleService) IChatController {
	return &chatController{
		chatService:  chatService,
		titleService: titleService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("/stream", c.StreamChat)
	h.Get("/sessions", c.GetSessions)
	h.Get("/sessions/:id/history", c.GetChatHistory)
	h.Get("/sessions/:id/title", c.GetTitle)
	h.Put("/sessions/:id/title", c.RenameTitle)
	h.Delete("/sessions/:id", c.DeleteSession)
}

// StreamChat runs a chat turn and streams the reply as SSE events:
// "session" first, then "delta" fragments, then "done" (or "error").
func (c *chatController) StreamChat(ctx *fiber.Ctx) error {
	var req dto.StreamChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")
	ctx.Set("X-Accel-Buffering", "no") // Disable nginx buffering

	chatService := c.chatService
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// The handler has returned by the time this runs, so the fiber ctx
		// must not be touched in here.
		sink := &sseSink{w: w}
		if _, err := chatService.StreamChat(context.Background(), &req, sink); err != nil {
			sink.event("error", map[string]string{"message": err.Error()})
		}
	}))

	return nil
}

func (c *chatController) GetSessions(ctx *fiber.Ctx) error {
	sessions, err := c.chatService.ListSessions(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat sessions", sessions))
}

func (c *chatController) GetChatHistory(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	history, err := c.chatService.GetChatHistory(ctx.Context(), sessionId)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat history", history))
}

func (c *chatController) GetTitle(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	title, err := c.titleService.GetTitle(ctx.Context(), sessionId)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Session title", dto.TitleResponse{
		SessionId: sessionId,
		Title:     title,
	}))
}

// RenameTitle regenerates a session's title from the provided seed text and
// waits for the result. Works whether or not a title exists yet.
func (c *chatController) RenameTitle(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	var req dto.RenameTitleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	title, err := c.titleService.GenerateTitle(ctx.Context(), sessionId, req.Seed)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Title updated", dto.TitleResponse{
		SessionId: sessionId,
		Title:     &title,
	}))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	if err := c.chatService.DeleteSession(ctx.Context(), sessionId); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Session deleted", nil))
}

// sseSink adapts the buffered response writer to the streaming contract.
type sseSink struct {
	w *bufio.Writer
}

func (s *sseSink) Session(sessionId uuid.UUID, isNew bool) error {
	return s.event("session", map[string]interface{}{
		"session_id":  sessionId.String(),
		"new_session": isNew,
	})
}

func (s *sseSink) Delta(content string) error {
	return s.event("delta", map[string]string{"content": content})
}

func (s *sseSink) Done(result *dto.StreamChatResult) error {
	return s.event("done", result)
}

func (s *sseSink) event(name string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, payload); err != nil {
		return err
	}
	// Flush failing means the client hung up; abort the stream.
	return s.w.Flush()
}
