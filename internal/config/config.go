package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the relay service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	TelegramBotToken   string
	TelegramAPIBaseURL string

	OpenAIAPIKey    string
	OpenAIBaseURL   string
	Model           string
	Instructions    string
	MaxOutputTokens int

	MaxTurns       int
	CooldownWindow time.Duration
	// RequestTimeout bounds each downstream HTTP call. Zero means no timeout
	// is enforced by this layer; the upstream behavior had none.
	RequestTimeout time.Duration

	DatabaseURL string
	RedisURL    string
}

// Credentialed reports whether both external credentials are present.
// The service still serves health checks without them; webhook events
// short-circuit with a configuration-error reply instead.
func (c Config) Credentialed() bool {
	return strings.TrimSpace(c.TelegramBotToken) != "" && strings.TrimSpace(c.OpenAIAPIKey) != ""
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:           envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:   envOrDefault("APP_METRICS_NAMESPACE", "gptrelay"),
		TelegramBotToken:   stringsTrimSpace("TELEGRAM_BOT_TOKEN"),
		TelegramAPIBaseURL: envOrDefault("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
		OpenAIAPIKey:       stringsTrimSpace("OPENAI_API_KEY"),
		OpenAIBaseURL:      envOrDefault("OPENAI_BASE_URL", "https://api.openai.com"),
		Model:              envOrDefault("OPENAI_MODEL", "gpt-5.2"),
		Instructions:       envOrDefault("RELAY_INSTRUCTIONS", "You are a helpful assistant inside Telegram. Keep replies short and clear."),
		MaxOutputTokens:    300,
		MaxTurns:           12,
		CooldownWindow:     2 * time.Second,
		RequestTimeout:     0,
		DatabaseURL:        stringsTrimSpace("DATABASE_URL"),
		RedisURL:           stringsTrimSpace("REDIS_URL"),
		ShutdownTimeout:    15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CooldownWindow, err = durationFromEnv("RELAY_COOLDOWN", cfg.CooldownWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.RequestTimeout, err = durationFromEnv("RELAY_REQUEST_TIMEOUT", cfg.RequestTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxTurns, err = intFromEnv("RELAY_MAX_TURNS", cfg.MaxTurns)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxOutputTokens, err = intFromEnv("RELAY_MAX_OUTPUT_TOKENS", cfg.MaxOutputTokens)
	if err != nil {
		return Config{}, err
	}

	if cfg.MaxTurns <= 0 {
		return Config{}, fmt.Errorf("RELAY_MAX_TURNS must be positive")
	}
	if cfg.MaxOutputTokens <= 0 {
		return Config{}, fmt.Errorf("RELAY_MAX_OUTPUT_TOKENS must be positive")
	}
	if cfg.CooldownWindow < 0 {
		return Config{}, fmt.Errorf("RELAY_COOLDOWN must not be negative")
	}
	if cfg.RequestTimeout < 0 {
		return Config{}, fmt.Errorf("RELAY_REQUEST_TIMEOUT must not be negative")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
