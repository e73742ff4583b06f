package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel     OTelConfig
	GitHub   GitHubConfig
	Poll     PollConfig
	EventLog EventLogConfig
	Env      string
	Port     string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type GitHubConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type PollConfig struct {
	Interval time.Duration
}

type EventLogConfig struct {
	Capacity int
}

const (
	// The public events endpoint is rate limited; anything below 10s
	// burns through even an authenticated quota with a handful of
	// watched repos, and above 60s the viewer feels dead.
	minPollInterval = 10 * time.Second
	maxPollInterval = 60 * time.Second
)

// Load loads configuration from environment variables.
// In development it also reads a .env file from the working directory.
func Load() (Config, error) {
	if getEnv("REPOWATCH_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:  getEnv("REPOWATCH_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "repowatch"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		GitHub: GitHubConfig{
			BaseURL: getEnv("GITHUB_API_URL", "https://api.github.com"),
			Token:   getEnv("GITHUB_TOKEN", ""),
			Timeout: getEnvDuration("GITHUB_TIMEOUT", 10*time.Second),
		},
		Poll: PollConfig{
			Interval: getEnvDuration("POLL_INTERVAL", 30*time.Second),
		},
		EventLog: EventLogConfig{
			Capacity: getEnvInt("EVENT_LOG_CAPACITY", 200),
		},
	}

	if cfg.Poll.Interval < minPollInterval {
		cfg.Poll.Interval = minPollInterval
	}
	if cfg.Poll.Interval > maxPollInterval {
		cfg.Poll.Interval = maxPollInterval
	}

	if cfg.EventLog.Capacity <= 0 {
		return Config{}, fmt.Errorf("EVENT_LOG_CAPACITY must be positive, got %d", cfg.EventLog.Capacity)
	}
	if cfg.GitHub.BaseURL == "" {
		return Config{}, fmt.Errorf("GITHUB_API_URL must not be empty")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c GitHubConfig) Authenticated() bool {
	return c.Token != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
