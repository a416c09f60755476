package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	PublicURL string `env:"PUBLIC_URL"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	StorageDriver string `env:"STORAGE_DRIVER" default:"sqlite"`
	DatabaseURL   string `env:"DATABASE_URL"`
	SQLitePath    string `env:"SQLITE_PATH" default:"binp.db"`

	RedisURL  string        `env:"REDIS_URL"`
	CacheTTL  time.Duration `env:"CACHE_TTL" default:"5m"`
	CacheSize int           `env:"CACHE_SIZE" default:"1000"`

	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" default:"1h"`
	StyleConfig     string        `env:"STYLE_CONFIG"`
	HighlightStyle  string        `env:"HIGHLIGHT_STYLE" default:"tokyonight-night"`
	RateLimit       float64       `env:"RATE_LIMIT" default:"20"`
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AllowedOrigins returns the CORS origins: the public URL in production,
// localhost on the configured port otherwise.
func (c *Config) AllowedOrigins() []string {
	if c.IsProduction() {
		return []string{c.PublicURL}
	}
	return []string{"http://localhost:" + c.Port}
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for STORAGE_DRIVER=%s", DriverPostgres)
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for STORAGE_DRIVER=%s", DriverSQLite)
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, cfg.StorageDriver)
	}

	if cfg.IsProduction() {
		if cfg.PublicURL == "" {
			return fmt.Errorf("PUBLIC_URL is required when APP_ENV=production")
		}
		u, err := url.Parse(cfg.PublicURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("PUBLIC_URL must be an absolute URL, got %q", cfg.PublicURL)
		}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.CacheSize < 0 {
		return fmt.Errorf("CACHE_SIZE must not be negative, got %d", cfg.CacheSize)
	}
	if cfg.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative, got %s", cfg.CacheTTL)
	}
	if cfg.JanitorInterval <= 0 {
		return fmt.Errorf("JANITOR_INTERVAL must be positive, got %s", cfg.JanitorInterval)
	}
	if cfg.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive, got %v", cfg.RateLimit)
	}

	return nil
}
