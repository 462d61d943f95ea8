package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chunkrecall/trainer/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:                  ":8080",
		DBPath:                "test.db",
		LogLevel:              "INFO",
		OpenAIModel:           "gpt-4o-mini",
		OpenAITranscribeModel: "whisper-1",
		OpenAIBaseURL:         "https://api.openai.com/v1",
		OpenAITemperature:     0.7,
		FirebaseAPIKey:        "firebase-key",
		DailyLimit:            5,
		ImportWorkerCount:     2,
		ImportQueueSize:       32,
		QueueRefreshAt:        "00:05",
		SessionTTL:            720 * time.Hour,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_SingleField(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*config.Config)
		expectedError string
	}{
		{"empty addr", func(c *config.Config) { c.Addr = "" }, "ADDR cannot be empty"},
		{"empty db path", func(c *config.Config) { c.DBPath = " " }, "DB_PATH cannot be empty"},
		{"unknown log level", func(c *config.Config) { c.LogLevel = "LOUD" }, "LOG_LEVEL"},
		{"missing firebase key", func(c *config.Config) { c.FirebaseAPIKey = "" }, "FIREBASE_API_KEY is required"},
		{"empty model", func(c *config.Config) { c.OpenAIModel = "" }, "OPENAI_MODEL"},
		{"base url without scheme", func(c *config.Config) { c.OpenAIBaseURL = "api.openai.com" }, "OPENAI_BASE_URL"},
		{"temperature too high", func(c *config.Config) { c.OpenAITemperature = 2.5 }, "OPENAI_TEMPERATURE"},
		{"zero daily limit", func(c *config.Config) { c.DailyLimit = 0 }, "DAILY_LIMIT"},
		{"zero import workers", func(c *config.Config) { c.ImportWorkerCount = 0 }, "IMPORT_WORKER_COUNT"},
		{"negative import queue", func(c *config.Config) { c.ImportQueueSize = -1 }, "IMPORT_QUEUE_SIZE"},
		{"bad refresh time", func(c *config.Config) { c.QueueRefreshAt = "25:99" }, "QUEUE_REFRESH_AT"},
		{"zero session ttl", func(c *config.Config) { c.SessionTTL = 0 }, "SESSION_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestValidate_LowercaseLogLevelAccepted(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "debug"

	assert.NoError(t, cfg.Validate())
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{LogLevel: "INVALID"}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	for _, name := range []string{
		"ADDR cannot be empty",
		"DB_PATH cannot be empty",
		"LOG_LEVEL",
		"FIREBASE_API_KEY",
		"OPENAI_MODEL",
		"OPENAI_BASE_URL",
		"DAILY_LIMIT",
		"IMPORT_WORKER_COUNT",
		"IMPORT_QUEUE_SIZE",
		"QUEUE_REFRESH_AT",
		"SESSION_TTL",
	} {
		assert.Contains(t, errStr, name)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ADDR", "DB_PATH", "LOG_LEVEL", "OPENAI_MODEL", "OPENAI_TEMPERATURE",
		"DAILY_LIMIT", "QUEUE_REFRESH_AT", "SESSION_TTL", "ALLOWED_EMAILS",
	} {
		t.Setenv(key, "")
	}

	cfg := config.Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "file:chunks.db", cfg.DBPath)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.InDelta(t, 0.7, cfg.OpenAITemperature, 1e-9)
	assert.Equal(t, 5, cfg.DailyLimit)
	assert.Equal(t, "00:05", cfg.QueueRefreshAt)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.AllowedEmails)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("DAILY_LIMIT", "12")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")
	t.Setenv("ALLOWED_EMAILS", " a@example.com, ,B@example.com ")
	t.Setenv("SECURE_COOKIES", "true")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, 12, cfg.DailyLimit)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.InDelta(t, 0.2, cfg.OpenAITemperature, 1e-9)
	assert.Equal(t, []string{"a@example.com", "B@example.com"}, cfg.AllowedEmails)
	assert.True(t, cfg.SecureCookies)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("DAILY_LIMIT", "many")
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("OPENAI_TEMPERATURE", "warm")

	cfg := config.Load()

	assert.Equal(t, 5, cfg.DailyLimit)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.InDelta(t, 0.7, cfg.OpenAITemperature, 1e-9)
}
