package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath      string
	ServerPort        string
	BaseURL           string
	FrontendURL       string
	OpenAIKey         string
	AIModel           string
	AIBaseURL         string
	EnableHSTS        bool
	RedisURL          string
	RabbitMQURL       string
	RabbitMQPrefetch  int
	JWKSURL           string
	JWTIssuer         string
	GoogleToken       string
	GoogleCalendarID  string
	SpotifyClientID   string
	SpotifySecret     string
	TransitionTTLDays int
	WorkerDebugMode   bool
	ServerDebugMode   bool
	OTELEnabled       bool
	OTELEndpoint      string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:      getEnv("DATABASE_PATH", "mindwell.db"),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
		AIModel:           getEnv("AI_MODEL", ""),
		AIBaseURL:         getEnv("AI_BASE_URL", ""),
		EnableHSTS:        getEnvBool("ENABLE_HSTS", false),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch:  getEnvInt("RABBITMQ_PREFETCH", 1),
		JWKSURL:           getEnv("AUTH_JWKS_URL", ""),
		JWTIssuer:         getEnv("AUTH_ISSUER", ""),
		GoogleToken:       getEnv("GOOGLE_OAUTH_TOKEN", ""),
		GoogleCalendarID:  getEnv("GOOGLE_CALENDAR_ID", "primary"),
		SpotifyClientID:   getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifySecret:     getEnv("SPOTIFY_CLIENT_SECRET", ""),
		TransitionTTLDays: getEnvInt("MOOD_TRANSITION_TTL_DAYS", 90),
		WorkerDebugMode:   getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:   getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:       getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("DATABASE_PATH is required")
	}

	if cfg.JWKSURL != "" && cfg.JWTIssuer == "" {
		return nil, fmt.Errorf("AUTH_ISSUER is required when AUTH_JWKS_URL is set")
	}

	return cfg, nil
}

// SpotifyEnabled reports whether Spotify credentials are configured.
func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifySecret != ""
}

// CalendarEnabled reports whether a Google OAuth token is configured.
func (c *Config) CalendarEnabled() bool {
	return c.GoogleToken != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
