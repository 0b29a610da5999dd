package service

import (
	"context"
	"encoding/json"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the title job topic. Title generation is best
// effort: a failed job is logged and dropped, never retried, because the
// rename pass will produce a title later once the session has more context.
type consumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	titleService ITitleService
	logger       logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	titleService ITitleService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		titleService: titleService,
		logger:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// Every outcome Acks; see the type comment.
	defer msg.Ack()

	var payload dto.TitleJobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal title job", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	cs.logger.Info("Consumer", "Processing title job", map[string]interface{}{
		"session_id": payload.SessionId,
		"reason":     payload.Reason,
	})

	if _, err := cs.titleService.GenerateTitle(ctx, payload.SessionId, payload.Seed); err != nil {
		cs.logger.Error("Consumer", "Title job failed", map[string]interface{}{
			"session_id": payload.SessionId,
			"reason":     payload.Reason,
			"error":      err.Error(),
		})
	}
}
