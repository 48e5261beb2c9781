package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int    `env:"PORT,default=3000"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	// Wallet backend
	BackendURL string `env:"BACKEND_URL,default=http://localhost:8080"`

	// HTTP client
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT,default=10s"`

	// Resilience. Retries apply to reads only.
	MaxRetries     int           `env:"MAX_RETRIES,default=0"`
	InitialBackoff time.Duration `env:"INITIAL_BACKOFF,default=100ms"`
	MaxConcurrency int           `env:"MAX_CONCURRENCY,default=50"`

	// Screens
	NotifyTTL time.Duration `env:"NOTIFY_TTL,default=5s"`

	// Sessions
	SessionTTL      time.Duration `env:"SESSION_TTL,default=8h"`
	SessionSecret   string        `env:"SESSION_SECRET,default=console-default-dev-secret-change-me"`
	RedisURL        string        `env:"REDIS_URL"`
	LoginRatePerMin int           `env:"LOGIN_RATE_PER_MIN,default=10"`

	// Browser front-end
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`

	// Observability. Empty endpoint disables trace export.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	var cfg Config
	// envdecode complains when no variable at all is set; defaults still apply.
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL must be set")
	}
	if cfg.NotifyTTL <= 0 {
		return nil, fmt.Errorf("NOTIFY_TTL must be positive")
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	return &cfg, nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
