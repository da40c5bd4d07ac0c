// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	Token        string `env:"TOKEN"`
	GuildID      string `env:"GUILD_ID"` // empty registers commands globally
	KeepaliveURL string `env:"KOYEP_URL"`

	Port     string `env:"PORT"      envDefault:"8000"`
	GRPCPort string `env:"GRPC_PORT"` // empty disables the gRPC health server
	DBDSN    string `env:"DB_DSN"    envDefault:":memory:"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	KeepaliveInterval time.Duration `env:"KEEPALIVE_INTERVAL"  envDefault:"180s"`
	DraftTTL          time.Duration `env:"CAPACITY_SELECT_TTL" envDefault:"180s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT"    envDefault:"10s"`

	MaxCapacity     int    `env:"MAX_CAPACITY"      envDefault:"8"`
	VoiceRoomPrefix string `env:"VOICE_ROOM_PREFIX" envDefault:"채널 "`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("TOKEN cannot be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN cannot be empty")
	}
	if c.MaxCapacity < 2 {
		return fmt.Errorf("MAX_CAPACITY must be >= 2")
	}
	if c.DraftTTL <= 0 {
		return fmt.Errorf("CAPACITY_SELECT_TTL must be > 0")
	}
	if c.KeepaliveURL != "" && c.KeepaliveInterval <= 0 {
		return fmt.Errorf("KEEPALIVE_INTERVAL must be > 0 when KOYEP_URL is set")
	}
	if c.VoiceRoomPrefix == "" {
		return fmt.Errorf("VOICE_ROOM_PREFIX cannot be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel maps a LOG_LEVEL value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", s)
	}
}
