package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Tables   TableConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	IsTesting          bool
}

type DatabaseConfig struct {
	Connection string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
}

// TableConfig carries the persisted table names. Both are overridable so the
// service can share a database with other tooling without clashing.
type TableConfig struct {
	ChatHistory   string
	SessionTitles string
}

type AIConfig struct {
	LLMProvider   string // "ollama" is the only supported backend today
	OllamaBaseURL string
	OllamaModel   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			IsTesting:          getEnvAsBool("IS_TESTING", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			Host:       getEnv("DB_HOST", "db"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "password"),
			Name:       getEnv("DB_NAME", "chat-history"),
			SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		},
		Tables: TableConfig{
			ChatHistory:   getEnv("CHAT_HISTORY_TABLE", "chat_history"),
			SessionTitles: getEnv("SESSION_TITLES_TABLE", "session_titles"),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			OllamaBaseURL: getEnv("OLLAMA_URL", "http://ollama:11434"),
			OllamaModel:   getEnv("OLLAMA_MODEL", "llama3.2"),
		},
	}
}

// DSN returns the explicit connection string when set, otherwise one built
// from the discrete parts.
func (c DatabaseConfig) DSN() string {
	if c.Connection != "" {
		return c.Connection
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
