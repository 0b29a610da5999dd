package main

import (
	"log"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/model"
	"ai-chat-be/pkg/database"
)

func main() {
	cfg := config.Load()
	model.SetTableNames(cfg.Tables.ChatHistory, cfg.Tables.SessionTitles)

	db, err := database.NewGormDBFromDSN(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}

	log.Printf("Migrating tables %q and %q...", cfg.Tables.ChatHistory, cfg.Tables.SessionTitles)
	if err := db.AutoMigrate(&model.ChatMessage{}, &model.SessionTitle{}); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Done.")
}
