// Package config reads server settings from BJ_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageJSON   = "json"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the complete server configuration
type Config struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StorageType string `env:"STORAGE" envDefault:"json"`
	DataDir     string `env:"DATA_DIR" envDefault:"data"`
	RedisURL    string `env:"REDIS_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/blackjack.db"`

	SessionTimeout time.Duration `env:"SESSION_TIMEOUT" envDefault:"120s"`

	CardDir      string `env:"CARD_DIR" envDefault:"cards"`
	CardArtURL   string `env:"CARD_ART_URL" envDefault:"https://deckofcardsapi.com/static/img"`
	FetchCardArt bool   `env:"FETCH_CARD_ART" envDefault:"true"`

	DiscordToken string `env:"DISCORD_TOKEN"`
	DiscordGuild string `env:"DISCORD_GUILD"`

	// AdminKeyHash is a bcrypt hash; see `bjgame admin hash-key`
	AdminKeyHash string `env:"ADMIN_KEY_HASH"`
}

// Load parses the environment, applying the BJ_ prefix to every key
func Load() (Config, error) {
	return parse(env.Options{Prefix: "BJ_"})
}

// LoadFrom parses settings from the given map instead of the process environment
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: "BJ_", Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c Config) Validate() error {
	switch c.StorageType {
	case StorageMemory, StorageJSON, StorageSQLite:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("BJ_REDIS_URL is required when BJ_STORAGE=redis")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.StorageType)
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("session timeout must be positive, got %s", c.SessionTimeout)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// Addr returns host:port for the HTTP listener
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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
