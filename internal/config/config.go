package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	HTTPAddr    string
	DataDir     string
	DBPath      string
	LogLevel    string

	LLMProvider   string // gemini | openai | anthropic | none
	LLMBaseURL    string
	LLMAPIKey     string
	LLMModel      string
	LLMTimeoutSec int

	PersonaFile string

	MaxRetries   int
	RetryDelayMS int
	ContextTurns int
	HistoryLimit int

	SessionIdleMinutes int
	SessionSweepSpec   string

	WSAllowedOriginsCSV string
}

func FromEnv() Config {
	dataDir := stringOrDefault("CONCIERGE_DATA_DIR", "data")
	dbPath := stringOrDefault("CONCIERGE_DB_PATH", filepath.Join(dataDir, "concierge.sqlite"))

	// GEMINI_API_KEY is accepted for deployments that already export it.
	apiKey := strings.TrimSpace(os.Getenv("CONCIERGE_LLM_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}

	return Config{
		Environment: stringOrDefault("CONCIERGE_ENV", "development"),
		HTTPAddr:    stringOrDefault("CONCIERGE_HTTP_ADDR", ":8080"),
		DataDir:     dataDir,
		DBPath:      dbPath,
		LogLevel:    stringOrDefault("CONCIERGE_LOG_LEVEL", "info"),

		LLMProvider:   strings.ToLower(stringOrDefault("CONCIERGE_LLM_PROVIDER", "gemini")),
		LLMBaseURL:    strings.TrimSpace(os.Getenv("CONCIERGE_LLM_BASE_URL")),
		LLMAPIKey:     apiKey,
		LLMModel:      strings.TrimSpace(os.Getenv("CONCIERGE_LLM_MODEL")),
		LLMTimeoutSec: intOrDefault("CONCIERGE_LLM_TIMEOUT_SECONDS", 30),

		PersonaFile: strings.TrimSpace(os.Getenv("CONCIERGE_PERSONA_FILE")),

		MaxRetries:   nonNegativeIntOrDefault("CONCIERGE_MAX_RETRIES", 3),
		RetryDelayMS: intOrDefault("CONCIERGE_RETRY_DELAY_MS", 1000),
		ContextTurns: intOrDefault("CONCIERGE_CONTEXT_TURNS", 4),
		HistoryLimit: intOrDefault("CONCIERGE_HISTORY_LIMIT", 10),

		SessionIdleMinutes: intOrDefault("CONCIERGE_SESSION_IDLE_MINUTES", 30),
		SessionSweepSpec:   stringOrDefault("CONCIERGE_SESSION_SWEEP_SPEC", "@every 1m"),

		WSAllowedOriginsCSV: strings.TrimSpace(os.Getenv("CONCIERGE_WS_ALLOWED_ORIGINS")),
	}
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// SlogLevel maps LogLevel onto slog, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) WSAllowedOrigins() []string {
	var origins []string
	for _, item := range strings.Split(c.WSAllowedOriginsCSV, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

// nonNegativeIntOrDefault is intOrDefault that also accepts zero.
func nonNegativeIntOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
