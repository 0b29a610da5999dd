package main

import (
	"context"
	"log"

	"ai-chat-be/internal/bootstrap"
	"ai-chat-be/internal/config"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/server"
	"ai-chat-be/internal/tracer"
	"ai-chat-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// Table names are overridable per deployment and must be fixed before
	// the first query; gorm caches the schema it derives.
	model.SetTableNames(cfg.Tables.ChatHistory, cfg.Tables.SessionTitles)

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.DSN())
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	if !cfg.App.IsTesting {
		if err := gormDB.AutoMigrate(&model.ChatMessage{}, &model.SessionTitle{}); err != nil {
			log.Panicf("Auto migration failed: %v", err)
		}
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	// Note: In a larger app, we might use an errgroup or supervisor here
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
