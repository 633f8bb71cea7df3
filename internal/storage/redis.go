package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/narrative-engine/pkg/state"
	pkgstorage "github.com/jwebster45206/narrative-engine/pkg/storage"
)

// DefaultSaveTTL is how long a Redis save survives without being rewritten.
const DefaultSaveTTL = 24 * time.Hour

// RedisStorage implements the Storage interface using Redis for world states
// and the filesystem for catalogs.
type RedisStorage struct {
	Catalogs
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ pkgstorage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. redisURL is either a
// host:port address or a redis:// URL.
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	if logger == nil {
		logger = slog.Default()
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		opts = &redis.Options{Addr: redisURL}
	}

	return &RedisStorage{
		Catalogs: NewCatalogs(dataDir, logger),
		client:   redis.NewClient(opts),
		logger:   logger,
		ttl:      DefaultSaveTTL,
	}
}

// WithTTL sets the save expiry. Zero keeps saves forever.
// Returns the RedisStorage for method chaining
func (r *RedisStorage) WithTTL(ttl time.Duration) *RedisStorage {
	r.ttl = ttl
	return r
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func worldStateKey(id uuid.UUID) string {
	return "worldstate:" + id.String()
}

// World state operations (Redis-backed)

func (r *RedisStorage) SaveWorldState(ctx context.Context, id uuid.UUID, ws *state.WorldState) error {
	if ws == nil {
		return errors.New("world state cannot be nil")
	}
	payload, err := encodeWorldState(ws)
	if err != nil {
		r.logger.Error("Failed to encode world state", "session_id", id, "error", err)
		return err
	}

	if err := r.client.Set(ctx, worldStateKey(id), payload, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save world state", "session_id", id, "error", err)
		return fmt.Errorf("failed to save world state: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadWorldState(ctx context.Context, id uuid.UUID) (*state.WorldState, error) {
	payload, err := r.client.Get(ctx, worldStateKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("World state not found", "session_id", id)
			return nil, nil
		}
		r.logger.Error("Failed to load world state", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to load world state: %w", err)
	}
	if len(payload) == 0 {
		r.logger.Warn("World state not found", "session_id", id)
		return nil, nil
	}

	ws, err := decodeWorldState(payload)
	if err != nil {
		r.logger.Error("Failed to decode world state", "session_id", id, "error", err)
		return nil, err
	}
	return ws, nil
}

func (r *RedisStorage) DeleteWorldState(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, worldStateKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete world state", "session_id", id, "error", err)
		return fmt.Errorf("failed to delete world state: %w", err)
	}
	return nil
}

func sessionLockKey(id uuid.UUID) string {
	return "session-lock:" + id.String()
}

// Only the owner may extend or delete its lock.
var (
	extendLockScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		end
		return redis.call("set", KEYS[1], ARGV[1], "NX", "PX", ARGV[2]) and 1 or 0
	`)
	releaseLockScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)
)

var _ pkgstorage.SessionLocker = (*RedisStorage)(nil)

// AcquireSessionLock takes or extends the lock on a session.
// Returns true if owner holds the lock afterwards
func (r *RedisStorage) AcquireSessionLock(ctx context.Context, id uuid.UUID, owner string, ttl time.Duration) (bool, error) {
	n, err := extendLockScript.Run(ctx, r.client, []string{sessionLockKey(id)}, owner, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to acquire session lock: %w", err)
	}
	return n == 1, nil
}

// ReleaseSessionLock drops the lock if owner holds it.
func (r *RedisStorage) ReleaseSessionLock(ctx context.Context, id uuid.UUID, owner string) error {
	if err := releaseLockScript.Run(ctx, r.client, []string{sessionLockKey(id)}, owner).Err(); err != nil {
		r.logger.Error("Failed to release session lock", "error", err, "session_id", id)
		return fmt.Errorf("failed to release session lock: %w", err)
	}
	return nil
}
