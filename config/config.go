package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings.
type Config struct {
	Port              string
	DatabaseURL       string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	PineconeAPIKey    string
	PineconeIndexName string
	TelegramBotToken  string

	// ClassifierMode selects the intent-classification strategy at
	// startup: "llm" (generative-backed) or "pattern" (regex only).
	ClassifierMode string

	// LLMTimeout bounds every generative call; on expiry the caller
	// degrades instead of blocking the conversation.
	LLMTimeout time.Duration

	// SessionTTL is how long an idle quiz session survives before the
	// expiry sweep finalizes it.
	SessionTTL time.Duration
}

// Load reads configuration from the environment, honoring a local .env
// file when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] No .env file found, using environment variables")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DB_URL"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		PineconeAPIKey:    os.Getenv("PINECONE_API_KEY"),
		PineconeIndexName: getEnv("PINECONE_INDEX_NAME", "mentor-study-material"),
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		ClassifierMode:    getEnv("CLASSIFIER_MODE", "llm"),
		LLMTimeout:        getDurationEnv("LLM_TIMEOUT_SECONDS", time.Second, 30*time.Second),
		SessionTTL:        getDurationEnv("SESSION_TTL_MINUTES", time.Minute, 30*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, unit, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("[ERROR] Invalid value for %s: %q, using default", key, raw)
		return fallback
	}

	return time.Duration(n) * unit
}
