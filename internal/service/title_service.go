package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/internal/websocket"
	"ai-chat-be/pkg/events"
	"ai-chat-be/pkg/llm"
	pktNats "ai-chat-be/pkg/nats"

	"github.com/google/uuid"
)

// ITitleService owns the session title lifecycle: generation from the first
// message, renames once a vague session gains context, reads, and deletes.
type ITitleService interface {
	// GenerateTitle asks the model for a title and upserts it. Safe to call
	// whether or not a title already exists.
	GenerateTitle(ctx context.Context, sessionId uuid.UUID, seed string) (string, error)

	// QueueGeneration enqueues an initial title job; the caller does not wait.
	QueueGeneration(ctx context.Context, sessionId uuid.UUID, seed string) error

	// QueueRename enqueues a rename job for a session whose current title is
	// the vague-input placeholder.
	QueueRename(ctx context.Context, sessionId uuid.UUID, seed string) error

	// GetTitle returns nil when no title has been generated yet. Absence is
	// a normal state, not an error.
	GetTitle(ctx context.Context, sessionId uuid.UUID) (*string, error)

	// Delete removes a session's title. Deleting an absent title succeeds.
	Delete(ctx context.Context, sessionId uuid.UUID) error
}

type titleService struct {
	uowFactory  unitofwork.RepositoryFactory
	llmProvider llm.LLMProvider
	publisher   IPublisherService
	titleCache  *memory.TitleCache
	wsHub       *websocket.Hub
	natsPub     *pktNats.Publisher
	logger      logger.ILogger
}

func NewTitleService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	publisher IPublisherService,
	titleCache *memory.TitleCache,
	wsHub *websocket.Hub,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) ITitleService {
	return &titleService{
		uowFactory:  uowFactory,
		llmProvider: llmProvider,
		publisher:   publisher,
		titleCache:  titleCache,
		wsHub:       wsHub,
		natsPub:     natsPub,
		logger:      log,
	}
}

func (s *titleService) GenerateTitle(ctx context.Context, sessionId uuid.UUID, seed string) (string, error) {
	title, err := s.askModel(ctx, seed)
	if err != nil {
		return "", err
	}

	entityTitle := &entity.SessionTitle{
		SessionId: sessionId,
		Title:     title,
		UpdatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionTitleRepository().Upsert(ctx, entityTitle); err != nil {
		return "", fmt.Errorf("failed to store title: %w", err)
	}

	s.titleCache.Set(sessionId.String(), title)
	s.announce(ctx, sessionId, title)

	s.logger.Info("TitleService", "Title stored", map[string]interface{}{
		"session_id": sessionId,
		"title":      title,
	})
	return title, nil
}

func (s *titleService) QueueGeneration(ctx context.Context, sessionId uuid.UUID, seed string) error {
	return s.enqueue(ctx, sessionId, seed, dto.TitleReasonInitial)
}

func (s *titleService) QueueRename(ctx context.Context, sessionId uuid.UUID, seed string) error {
	return s.enqueue(ctx, sessionId, seed, dto.TitleReasonRename)
}

func (s *titleService) enqueue(ctx context.Context, sessionId uuid.UUID, seed, reason string) error {
	payload := dto.TitleJobMessage{
		SessionId: sessionId,
		Seed:      seed,
		Reason:    reason,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, payloadJson)
}

func (s *titleService) GetTitle(ctx context.Context, sessionId uuid.UUID) (*string, error) {
	if cached, found := s.titleCache.Get(sessionId.String()); found {
		return &cached, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	row, err := uow.SessionTitleRepository().FindBySessionId(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	s.titleCache.Set(sessionId.String(), row.Title)
	return &row.Title, nil
}

func (s *titleService) Delete(ctx context.Context, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionTitleRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	s.titleCache.Delete(sessionId.String())
	return nil
}

// askModel runs the title prompt over the seed text and normalizes the
// answer. Models like to wrap short answers in quotes.
func (s *titleService) askModel(ctx context.Context, seed string) (string, error) {
	history := []llm.Message{
		{Role: constant.OllamaRoleSystem, Content: constant.TitleSystemPrompt},
		{Role: constant.OllamaRoleUser, Content: seed},
	}

	raw, err := s.llmProvider.Chat(ctx, history)
	if err != nil {
		return "", fmt.Errorf("title generation failed: %w", err)
	}

	title := strings.TrimSpace(raw)
	title = strings.Trim(title, `"'`)
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("title generation returned empty response")
	}
	return title, nil
}

// announce pushes the new title to connected frontends and onto the event
// bus. Both sinks are optional; a missing one is skipped silently.
func (s *titleService) announce(ctx context.Context, sessionId uuid.UUID, title string) {
	if s.wsHub != nil {
		s.wsHub.Broadcast(events.TypeTitleUpdated, map[string]interface{}{
			"session_id": sessionId.String(),
			"title":      title,
		})
	}
	if s.natsPub != nil {
		if err := s.natsPub.Publish(ctx, events.NewTitleUpdated(sessionId.String(), title)); err != nil {
			s.logger.Warn("TitleService", "Failed to publish title event", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}
}
