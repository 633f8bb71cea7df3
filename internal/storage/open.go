package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/narrative-engine/internal/config"
	pkgstorage "github.com/jwebster45206/narrative-engine/pkg/storage"
)

// Open connects the save backend named by cfg. It returns nil for the "none"
// backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pkgstorage.Storage, error) {
	switch cfg.SaveBackend {
	case config.BackendRedis:
		r := NewRedisStorage(cfg.RedisURL, cfg.DataDir, logger).WithTTL(cfg.SaveTTL)
		if err := r.WaitForConnection(ctx); err != nil {
			_ = r.Close()
			return nil, err
		}
		return r, nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLitePath, cfg.DataDir, logger)
	case config.BackendNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown save backend %q", cfg.SaveBackend)
}
