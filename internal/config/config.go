package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Text-generation collaborator (Groq)
	GroqAPIKey string
	GroqAPIURL string
	GroqModel  string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration
	AdminEmails   []string

	// Demo mode: enables the unauthenticated demo bypass and relaxes the
	// OAuth credential requirement.
	DemoAuth bool

	// Market feed
	MarketAPIURL   string
	MarketCacheTTL time.Duration

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		GroqAPIKey: getEnv("GROQ_API_KEY", ""),
		GroqAPIURL: getEnv("GROQ_API_URL", "https://api.groq.com/openai/v1"),
		GroqModel:  getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/v1/auth/callback"),

		SessionSecret: getEnv("SESSION_SECRET", "cie-default-dev-secret-change-me"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
		AdminEmails:   splitList(getEnv("ADMIN_EMAILS", "")),

		DemoAuth: getEnv("DEMO_AUTH", "false") == "true",

		MarketAPIURL:   getEnv("MARKET_API_URL", "https://query2.finance.yahoo.com"),
		MarketCacheTTL: getEnvDuration("MARKET_CACHE_TTL", 5*time.Minute),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 5),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

// LoadDotEnv reads a .env file (for local development) without overriding
// variables already present in the environment.
func LoadDotEnv(path string) error {
	return godotenv.Load(path)
}

// Validate checks that all required credentials are present. The process
// must not run partially configured: a missing credential is fatal at
// startup. With demo auth enabled the Google credentials are optional.
func (c *Config) Validate() error {
	var missing []string

	if c.GroqAPIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	if !c.DemoAuth {
		if c.GoogleClientID == "" {
			missing = append(missing, "GOOGLE_CLIENT_ID")
		}
		if c.GoogleClientSecret == "" {
			missing = append(missing, "GOOGLE_CLIENT_SECRET")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
