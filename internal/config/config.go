package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Save backends.
const (
	BackendNone   = "none"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	Environment string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string        `env:"LOG_LEVEL" envDefault:"info"`
	DataDir     string        `env:"DATA_DIR" envDefault:"./data"`
	Catalog     string        `env:"CATALOG"` // file in DATA_DIR/scenarios; empty means the built-in catalog
	SaveBackend string        `env:"SAVE_BACKEND" envDefault:"none"`
	RedisURL    string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	SQLitePath  string        `env:"SQLITE_PATH" envDefault:"./data/saves.db"`
	SaveTTL     time.Duration `env:"SAVE_TTL" envDefault:"24h"`
	SessionID   string        `env:"SESSION_ID"`
	RandomSeed  uint64        `env:"RANDOM_SEED"`

	LogLevel slog.Level `env:"-"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	cfg.SaveBackend = strings.ToLower(cfg.SaveBackend)

	switch cfg.SaveBackend {
	case BackendNone, BackendRedis, BackendSQLite:
	default:
		return nil, fmt.Errorf("unknown SAVE_BACKEND %q (want none, redis or sqlite)", cfg.SaveBackend)
	}
	return &cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
