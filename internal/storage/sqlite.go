package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/narrative-engine/pkg/state"
	pkgstorage "github.com/jwebster45206/narrative-engine/pkg/storage"
)

// SQLiteStorage keeps world states in a local SQLite file and reads catalogs
// from the filesystem.
type SQLiteStorage struct {
	Catalogs
	db     *sql.DB
	logger *slog.Logger
}

var _ pkgstorage.Storage = (*SQLiteStorage)(nil)

// OpenSQLite opens (creating if needed) the save database at path.
func OpenSQLite(path string, dataDir string, logger *slog.Logger) (*SQLiteStorage, error) {
	if path == "" {
		return nil, errors.New("empty db path")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init save schema: %w", err)
	}

	return &SQLiteStorage{
		Catalogs: NewCatalogs(dataDir, logger),
		db:       db,
		logger:   logger,
	}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS saves (
			id TEXT PRIMARY KEY,
			scenario TEXT NOT NULL,
			payload BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", "error", err)
		return err
	}
	return nil
}

func (s *SQLiteStorage) SaveWorldState(ctx context.Context, id uuid.UUID, ws *state.WorldState) error {
	if ws == nil {
		return errors.New("world state cannot be nil")
	}
	payload, err := encodeWorldState(ws)
	if err != nil {
		s.logger.Error("Failed to encode world state", "session_id", id, "error", err)
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saves (id, scenario, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET scenario = excluded.scenario, payload = excluded.payload, updated_at = excluded.updated_at`,
		id.String(), ws.Scenario, payload, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		s.logger.Error("Failed to save world state", "session_id", id, "error", err)
		return fmt.Errorf("failed to save world state: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LoadWorldState(ctx context.Context, id uuid.UUID) (*state.WorldState, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM saves WHERE id = ?`, id.String()).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("World state not found", "session_id", id)
			return nil, nil
		}
		s.logger.Error("Failed to load world state", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to load world state: %w", err)
	}

	ws, err := decodeWorldState(payload)
	if err != nil {
		s.logger.Error("Failed to decode world state", "session_id", id, "error", err)
		return nil, err
	}
	return ws, nil
}

func (s *SQLiteStorage) DeleteWorldState(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE id = ?`, id.String()); err != nil {
		s.logger.Error("Failed to delete world state", "session_id", id, "error", err)
		return fmt.Errorf("failed to delete world state: %w", err)
	}
	return nil
}
