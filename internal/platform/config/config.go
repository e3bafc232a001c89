// Package config loads and validates service configuration from the
// environment, with .env support for local development.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Member API
	BaseURL        string        `env:"LIVEKENCENG_BASE_URL" default:"https://livekenceng.com"`
	MemberEmail    string        `env:"MEMBER_EMAIL"`
	MemberPassword string        `env:"MEMBER_PASSWORD"`
	APITimeout     time.Duration `env:"API_TIMEOUT" default:"15s"`
	APIRate        float64       `env:"API_RATE" default:"5"`

	// Rotation loop
	DefaultDelay time.Duration `env:"DEFAULT_DELAY" default:"60s"`

	// Optional product-set cache
	RedisURL   string        `env:"REDIS_URL"`
	CatalogTTL time.Duration `env:"CATALOG_CACHE_TTL" default:"1h"`

	MaxStatusClients int `env:"MAX_STATUS_CLIENTS" default:"100"`
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
	if cfg.MemberEmail == "" {
		return fmt.Errorf("MEMBER_EMAIL is required")
	}
	if cfg.MemberPassword == "" {
		return fmt.Errorf("MEMBER_PASSWORD is required")
	}
	if cfg.DefaultDelay < time.Second {
		return fmt.Errorf("DEFAULT_DELAY must be at least 1s, got %s", cfg.DefaultDelay)
	}
	if cfg.APIRate <= 0 {
		return fmt.Errorf("API_RATE must be positive, got %v", cfg.APIRate)
	}
	if cfg.MaxStatusClients <= 0 {
		return fmt.Errorf("MAX_STATUS_CLIENTS must be positive, got %d", cfg.MaxStatusClients)
	}

	return nil
}
