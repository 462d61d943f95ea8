package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/chunkrecall/trainer/internal/logger"
)

type Config struct {
	Addr     string
	DBPath   string
	LogLevel string

	OpenAIAPIKey          string
	OpenAIModel           string
	OpenAITranscribeModel string
	OpenAIBaseURL         string
	OpenAITemperature     float64

	FirebaseAPIKey        string
	FirebaseAuthDomain    string
	FirebaseMeasurementID string
	AllowedEmails         []string

	DailyLimit        int
	ImportWorkerCount int
	ImportQueueSize   int
	QueueRefreshAt    string
	SessionTTL        time.Duration
	SecureCookies     bool
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:     envOr("ADDR", ":8080"),
		DBPath:   envOr("DB_PATH", "file:chunks.db"),
		LogLevel: envOr("LOG_LEVEL", "INFO"),

		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:           envOr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITranscribeModel: envOr("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
		OpenAIBaseURL:         envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAITemperature:     envFloatOr("OPENAI_TEMPERATURE", 0.7),

		FirebaseAPIKey:        os.Getenv("FIREBASE_API_KEY"),
		FirebaseAuthDomain:    os.Getenv("FIREBASE_AUTH_DOMAIN"),
		FirebaseMeasurementID: os.Getenv("FIREBASE_MEASUREMENT_ID"),
		AllowedEmails:         envListOr("ALLOWED_EMAILS", nil),

		DailyLimit:        envIntOr("DAILY_LIMIT", 5),
		ImportWorkerCount: envIntOr("IMPORT_WORKER_COUNT", 2),
		ImportQueueSize:   envIntOr("IMPORT_QUEUE_SIZE", 32),
		QueueRefreshAt:    envOr("QUEUE_REFRESH_AT", "00:05"),
		SessionTTL:        envDurationOr("SESSION_TTL", 720*time.Hour),
		SecureCookies:     envBoolOr("SECURE_COOKIES", false),
	}
}

// Validate reports every invalid setting at once, naming the variable
// responsible for each.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(c.Addr) == "" {
		add("ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		add("DB_PATH cannot be empty")
	}
	if _, ok := logger.LookupLevel(c.LogLevel); !ok {
		add("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel)
	}
	if c.FirebaseAPIKey == "" {
		add("FIREBASE_API_KEY is required")
	}
	if c.OpenAIModel == "" {
		add("OPENAI_MODEL cannot be empty")
	}
	if !strings.HasPrefix(c.OpenAIBaseURL, "http://") && !strings.HasPrefix(c.OpenAIBaseURL, "https://") {
		add("OPENAI_BASE_URL must be an http(s) URL (got %q)", c.OpenAIBaseURL)
	}
	if c.OpenAITemperature < 0 || c.OpenAITemperature > 2 {
		add("OPENAI_TEMPERATURE must be between 0 and 2 (got %v)", c.OpenAITemperature)
	}
	if c.DailyLimit < 1 {
		add("DAILY_LIMIT must be at least 1 (got %d)", c.DailyLimit)
	}
	if c.ImportWorkerCount < 1 {
		add("IMPORT_WORKER_COUNT must be at least 1 (got %d)", c.ImportWorkerCount)
	}
	if c.ImportQueueSize < 1 {
		add("IMPORT_QUEUE_SIZE must be at least 1 (got %d)", c.ImportQueueSize)
	}
	if _, err := time.Parse("15:04", c.QueueRefreshAt); err != nil {
		add("QUEUE_REFRESH_AT must be HH:MM (got %q)", c.QueueRefreshAt)
	}
	if c.SessionTTL <= 0 {
		add("SESSION_TTL must be positive (got %s)", c.SessionTTL)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}

// envListOr splits a comma-separated variable, dropping blank entries.
func envListOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
