package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/narrative-engine/pkg/scenario"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// Storage defines a unified interface for all storage operations.
// World states live in a save backend; catalogs are read from the filesystem.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// World state operations. LoadWorldState returns nil, nil when no save exists.
	SaveWorldState(ctx context.Context, id uuid.UUID, ws *state.WorldState) error
	LoadWorldState(ctx context.Context, id uuid.UUID) (*state.WorldState, error)
	DeleteWorldState(ctx context.Context, id uuid.UUID) error

	// Catalog operations (filesystem-backed). ListScenarios maps catalog
	// names to file names.
	ListScenarios(ctx context.Context) (map[string]string, error)
	GetScenario(ctx context.Context, filename string) (*scenario.Scenario, error)
}

// SessionLocker is implemented by backends shared between processes. A
// session is played by at most one owner at a time.
type SessionLocker interface {
	// AcquireSessionLock returns false if another owner holds the lock.
	// Calling it again as the holder extends the lock.
	AcquireSessionLock(ctx context.Context, id uuid.UUID, owner string, ttl time.Duration) (bool, error)
	ReleaseSessionLock(ctx context.Context, id uuid.UUID, owner string) error
}
