package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config holds the configuration for the application.
type Config struct {
	HTTPAddr     string `env:"HTTP_ADDR,default=:8080"`
	DatabasePath string `env:"DATABASE_PATH,default=data/assistant.db"`

	// JWT secret used to verify API bearer tokens.
	JWTSecret string `env:"JWT_SECRET,required"`

	// LLM provider settings. An empty API key is allowed: recipe
	// generation degrades to the deterministic fallback.
	GeminiAPIKey string        `env:"GEMINI_API_KEY,default="`
	GeminiModel  string        `env:"GEMINI_MODEL,default=gemini-1.5-flash"`
	LLMTimeout   time.Duration `env:"LLM_TIMEOUT,default=30s"`

	RecipeCacheTTL     time.Duration `env:"RECIPE_CACHE_TTL,default=15m"`
	RecipeCacheEntries int           `env:"RECIPE_CACHE_ENTRIES,default=128"`

	// Telegram front-end (optional; bot is disabled when the token is empty).
	TelegramBotToken       string  `env:"TELEGRAM_BOT_TOKEN,default="`
	TelegramWebhookURL     string  `env:"TELEGRAM_WEBHOOK_URL,default="`
	TelegramAdminID        int64   `env:"TELEGRAM_ADMIN_ID,default=0"`
	TelegramAllowedUserIDs []int64 `env:"TELEGRAM_ALLOWED_USER_IDS,default="`

	// Tracing.
	TracingEnabled bool   `env:"OTEL_TRACING_ENABLED,default=false"`
	ServiceName    string `env:"OTEL_SERVICE_NAME,default=kitchen-assistant"`
}

// Load creates a new Config object from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config from environment: %w", err)
	}
	return &cfg, nil
}
