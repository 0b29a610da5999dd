package bootstrap

import (
	"context"
	"log"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/controller"
	"ai-chat-be/internal/handler"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/internal/service"
	"ai-chat-be/internal/websocket"
	"ai-chat-be/pkg/llm/factory"
	pktNats "ai-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// TitleJobsTopic is the in-process queue that carries async title work.
const TitleJobsTopic = "title_jobs"

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	EventsHandler *handler.EventsHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. LLM Provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.OllamaModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.OllamaModel)

	// In-Memory Title Cache
	titleCache := memory.NewTitleCache()

	// 4. Infrastructure
	// NATS and Redis are optional in local and test runs; the services treat
	// a nil publisher and a nil redis client as "skip that sink".
	var natsPub *pktNats.Publisher
	var rdb *redis.Client
	if !cfg.App.IsTesting {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}

		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/events.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(TitleJobsTopic, pubSub)
	titleService := service.NewTitleService(
		uowFactory,
		llmProvider,
		publisherService,
		titleCache,
		wsHub,
		natsPub,
		sysLogger,
	)
	chatService := service.NewChatService(
		uowFactory,
		llmProvider,
		titleService,
		wsHub,
		natsPub,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		TitleJobsTopic,
		titleService,
		sysLogger,
	)

	// 6. Controllers & Handlers
	chatController := controller.NewChatController(chatService, titleService)
	eventsHandler := handler.NewEventsHandler(wsHub, sysLogger)

	return &Container{
		ChatController:  chatController,
		ConsumerService: consumerService,
		EventsHandler:   eventsHandler,
		WebSocketHub:    wsHub,
	}
}
