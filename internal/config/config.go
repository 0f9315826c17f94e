package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Webhook forwarding modes.
const (
	// ModeQuery lifts query, companyId and sessionId into the webhook URL query string.
	ModeQuery = "query"
	// ModeBody forwards the request body verbatim.
	ModeBody = "body"
)

const DefaultMaxBodyBytes = 1 << 20

type Config struct {
	Port          string
	AllowedOrigin string
	// External workflow engine
	WebhookURL     string
	WebhookMode    string
	WebhookTimeout time.Duration
	// Adds status:"success" to JSON object replies
	WebhookSuccessMarker bool
	// Largest accepted chat body or websocket frame, in bytes; 0 disables the cap
	MaxBodyBytes int64
	// Client-side bound on a single chat round trip
	ClientTimeout time.Duration
	// Logging
	LogLevel  string
	LogFormat string
	// Optional portal catalog file (.yaml, .yml or .toml)
	CatalogFile string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:                 getEnvDefault("PORT", "8080"),
		AllowedOrigin:        getEnvDefault("ALLOWED_ORIGIN", "*"),
		WebhookURL:           strings.TrimSpace(os.Getenv("N8N_URL")),
		WebhookMode:          getEnvModeDefault("WEBHOOK_MODE", ModeQuery),
		WebhookTimeout:       getEnvDurationDefault("WEBHOOK_TIMEOUT", 0),
		WebhookSuccessMarker: getEnvBoolDefault("WEBHOOK_SUCCESS_MARKER", false),
		MaxBodyBytes:         getEnvInt64Default("MAX_BODY_BYTES", DefaultMaxBodyBytes),
		ClientTimeout:        getEnvDurationDefault("CLIENT_TIMEOUT", 15*time.Second),
		LogLevel:             getEnvDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvDefault("LOG_FORMAT", "json"),
		CatalogFile:          os.Getenv("PORTAL_CATALOG"),
	}
	return cfg
}

// WebhookConfigured reports whether requests can be proxied at all.
func (c Config) WebhookConfigured() bool {
	return c.WebhookURL != ""
}

// Logger builds the process logger from LogLevel and LogFormat.
func (c Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(c.LogLevel)}
	if strings.EqualFold(c.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvModeDefault(key, def string) string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case ModeQuery:
		return ModeQuery
	case ModeBody:
		return ModeBody
	}
	return def
}

// getEnvDurationDefault accepts Go durations ("15s") or bare milliseconds ("15000").
func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	if d, err := time.ParseDuration(v + "ms"); err == nil && d >= 0 {
		return d
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getEnvInt64Default(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return def
	}
	return n
}
