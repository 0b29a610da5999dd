package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "chat_history", cfg.Tables.ChatHistory)
	assert.Equal(t, "session_titles", cfg.Tables.SessionTitles)
	assert.Equal(t, "ollama", cfg.Ai.LLMProvider)
	assert.Equal(t, "llama3.2", cfg.Ai.OllamaModel)
	assert.Equal(t, "http://ollama:11434", cfg.Ai.OllamaBaseURL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHAT_HISTORY_TABLE", "history_v2")
	t.Setenv("SESSION_TITLES_TABLE", "titles_v2")
	t.Setenv("OLLAMA_MODEL", "mistral")
	t.Setenv("IS_TESTING", "true")

	cfg := Load()

	assert.Equal(t, "history_v2", cfg.Tables.ChatHistory)
	assert.Equal(t, "titles_v2", cfg.Tables.SessionTitles)
	assert.Equal(t, "mistral", cfg.Ai.OllamaModel)
	assert.True(t, cfg.App.IsTesting)
}

func TestDSNFromParts(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "postgres",
		Password: "password",
		Name:     "chat-history",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=db user=postgres password=password dbname=chat-history port=5432 sslmode=disable",
		db.DSN())
}

func TestDSNPrefersConnectionString(t *testing.T) {
	db := DatabaseConfig{
		Connection: "postgres://u:p@h:5432/d",
		Host:       "ignored",
	}
	assert.Equal(t, "postgres://u:p@h:5432/d", db.DSN())
}
