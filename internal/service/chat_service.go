package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/internal/websocket"
	"ai-chat-be/pkg/events"
	"ai-chat-be/pkg/llm"
	pktNats "ai-chat-be/pkg/nats"

	"github.com/google/uuid"
)

// StreamSink receives the pieces of a streamed chat turn in order: first the
// session announcement, then zero or more deltas, then the final summary.
type StreamSink interface {
	Session(sessionId uuid.UUID, isNew bool) error
	Delta(content string) error
	Done(result *dto.StreamChatResult) error
}

type IChatService interface {
	// StreamChat runs one chat turn. A nil session id in the request mints a
	// new session. The user message is persisted before the model is called;
	// the reply is persisted only after the stream completes.
	StreamChat(ctx context.Context, request *dto.StreamChatRequest, sink StreamSink) (*dto.StreamChatResult, error)

	// GetChatHistory returns a session's messages oldest first. An unknown
	// session yields an empty list.
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.ChatHistoryItem, error)

	// ListSessions returns every session that has messages, ordered by last
	// activity ascending, each with its title when one exists.
	ListSessions(ctx context.Context) ([]*dto.SessionListItem, error)

	// DeleteSession removes a session's messages and title in one
	// transaction. Deleting an unknown session succeeds.
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
}

type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	llmProvider  llm.LLMProvider
	titleService ITitleService
	wsHub        *websocket.Hub
	natsPub      *pktNats.Publisher
	logger       logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	titleService ITitleService,
	wsHub *websocket.Hub,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:   uowFactory,
		llmProvider:  llmProvider,
		titleService: titleService,
		wsHub:        wsHub,
		natsPub:      natsPub,
		logger:       log,
	}
}

func (cs *chatService) StreamChat(ctx context.Context, request *dto.StreamChatRequest, sink StreamSink) (*dto.StreamChatResult, error) {
	sessionId := uuid.New()
	isNew := true
	if request.SessionId != nil {
		sessionId = *request.SessionId
		isNew = false
	}

	if err := sink.Session(sessionId, isNew); err != nil {
		return nil, err
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	// Prompt context is the stored transcript, oldest first.
	past, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	userMessage := &entity.ChatMessage{
		Id:        uuid.New(),
		SessionId: sessionId,
		Role:      constant.ChatMessageRoleHuman,
		Content:   request.Message,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMessage); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}

	history := buildModelHistory(past, request.Message)

	streamRes, err := cs.llmProvider.ChatStream(ctx, history, sink.Delta)
	if err != nil {
		// The user message stays; retrying the turn reuses it as context.
		return nil, fmt.Errorf("model stream failed: %w", err)
	}

	reply := &entity.ChatMessage{
		Id:        uuid.New(),
		SessionId: sessionId,
		Role:      constant.ChatMessageRoleAI,
		Content:   streamRes.Content,
		Meta: map[string]interface{}{
			"model":             streamRes.Model,
			"eval_count":        streamRes.EvalCount,
			"total_duration_ms": streamRes.TotalDuration.Milliseconds(),
		},
		CreatedAt: time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, reply); err != nil {
		return nil, fmt.Errorf("failed to store reply: %w", err)
	}

	cs.scheduleTitleWork(ctx, sessionId, isNew, request.Message)

	result := &dto.StreamChatResult{
		SessionId: sessionId,
		MessageId: userMessage.Id,
		ReplyId:   reply.Id,
		New:       isNew,
	}
	if err := sink.Done(result); err != nil {
		return nil, err
	}
	return result, nil
}

// scheduleTitleWork queues the async title jobs that follow a finished turn:
// a fresh session gets its first title from the opening message, and a
// session still carrying the placeholder gets a rename once enough turns
// have accumulated. Queue failures are logged and swallowed; the turn
// itself already succeeded.
func (cs *chatService) scheduleTitleWork(ctx context.Context, sessionId uuid.UUID, isNew bool, userMessage string) {
	if isNew {
		if err := cs.titleService.QueueGeneration(ctx, sessionId, userMessage); err != nil {
			cs.logger.Warn("ChatService", "Failed to queue title generation", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
		return
	}

	title, err := cs.titleService.GetTitle(ctx, sessionId)
	if err != nil || title == nil || *title != constant.SentinelTitle {
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.ChatMessageRepository().Count(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil || count < constant.RenameContextMessageCount {
		return
	}

	seed, err := cs.renameSeed(ctx, uow, sessionId)
	if err != nil {
		cs.logger.Warn("ChatService", "Failed to build rename context", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return
	}

	if err := cs.titleService.QueueRename(ctx, sessionId, seed); err != nil {
		cs.logger.Warn("ChatService", "Failed to queue rename", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

// renameSeed joins the most recent turns into a "role: content" transcript,
// oldest of them first.
func (cs *chatService) renameSeed(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) (string, error) {
	recent, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: constant.RenameContextMessageCount},
	)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		msg := recent[i]
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}
	return strings.Join(lines, "\n"), nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.ChatHistoryItem, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ChatHistoryItem, 0, len(messages))
	for _, msg := range messages {
		items = append(items, &dto.ChatHistoryItem{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	return items, nil
}

func (cs *chatService) ListSessions(ctx context.Context) ([]*dto.SessionListItem, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	activity, err := uow.ChatMessageRepository().ListSessionActivity(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.SessionListItem, 0, len(activity))
	for _, row := range activity {
		title, err := cs.titleService.GetTitle(ctx, row.SessionId)
		if err != nil {
			return nil, err
		}
		items = append(items, &dto.SessionListItem{
			SessionId:    row.SessionId,
			Title:        title,
			LastActivity: row.LastActivity,
		})
	}
	return items, nil
}

func (cs *chatService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.SessionTitleRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	// Out-of-band cleanup once the rows are gone.
	if err := cs.titleService.Delete(ctx, sessionId); err != nil {
		cs.logger.Warn("ChatService", "Failed to clear title cache", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
	if cs.wsHub != nil {
		cs.wsHub.Broadcast(events.TypeSessionDeleted, map[string]interface{}{
			"session_id": sessionId.String(),
		})
	}
	if cs.natsPub != nil {
		if err := cs.natsPub.Publish(ctx, events.NewSessionDeleted(sessionId.String())); err != nil {
			cs.logger.Warn("ChatService", "Failed to publish delete event", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}
	return nil
}

// buildModelHistory maps the persisted transcript onto the roles the model
// expects and appends the incoming message.
func buildModelHistory(past []*entity.ChatMessage, newMessage string) []llm.Message {
	history := make([]llm.Message, 0, len(past)+2)
	history = append(history, llm.Message{
		Role:    constant.OllamaRoleSystem,
		Content: constant.ChatSystemPrompt,
	})
	for _, msg := range past {
		role := constant.OllamaRoleUser
		if msg.Role == constant.ChatMessageRoleAI {
			role = constant.OllamaRoleAssistant
		}
		history = append(history, llm.Message{Role: role, Content: msg.Content})
	}
	history = append(history, llm.Message{Role: constant.OllamaRoleUser, Content: newMessage})
	return history
}
