package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ChatMessageRepository())
	assert.NotNil(t, uow.SessionTitleRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	ctx := context.Background()
	sessionId := uuid.New()

	t.Run("Message round trip", func(t *testing.T) {
		msg := &entity.ChatMessage{
			Id:        uuid.New(),
			SessionId: sessionId,
			Role:      constant.ChatMessageRoleHuman,
			Content:   "integration hello",
			Meta:      map[string]interface{}{"source": "integration-test"},
			CreatedAt: time.Now(),
		}
		require.NoError(t, uow.ChatMessageRepository().Create(ctx, msg))

		found, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.BySessionID{SessionID: sessionId},
		)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "integration hello", found[0].Content)
		assert.Equal(t, "integration-test", found[0].Meta["source"])
	})

	t.Run("Title upsert is atomic per session", func(t *testing.T) {
		repo := uow.SessionTitleRepository()

		require.NoError(t, repo.Upsert(ctx, &entity.SessionTitle{
			SessionId: sessionId,
			Title:     "First",
			UpdatedAt: time.Now(),
		}))
		require.NoError(t, repo.Upsert(ctx, &entity.SessionTitle{
			SessionId: sessionId,
			Title:     "Second",
			UpdatedAt: time.Now(),
		}))

		count, err := repo.Count(ctx, sessionId)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		row, err := repo.FindBySessionId(ctx, sessionId)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, "Second", row.Title)
	})

	t.Run("Cleanup", func(t *testing.T) {
		assert.NoError(t, uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId))
		assert.NoError(t, uow.SessionTitleRepository().Delete(ctx, sessionId))
		// Second delete is a no-op.
		assert.NoError(t, uow.SessionTitleRepository().Delete(ctx, sessionId))
	})
}
