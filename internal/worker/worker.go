package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/narrative-engine/internal/storage"
	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/frontend"
	"github.com/jwebster45206/narrative-engine/pkg/scenario"
	"github.com/jwebster45206/narrative-engine/pkg/state"
	pkgstorage "github.com/jwebster45206/narrative-engine/pkg/storage"
)

const (
	lockTTL = 10 * time.Minute

	// DefaultCatalog names the built-in catalog in saves and reload commands.
	DefaultCatalog = "default"
)

// ErrSessionLocked is returned when another process is playing the session.
var ErrSessionLocked = errors.New("session is locked by another worker")

// CatalogSource reads catalogs by file name.
type CatalogSource interface {
	GetScenario(ctx context.Context, filename string) (*scenario.Scenario, error)
}

// Options configure a Worker. Zero values mean: built-in catalog, new
// session, time-seeded randomness.
type Options struct {
	ID        string
	Catalog   string
	SessionID string
	Seed      uint64
	DataDir   string
}

// Worker owns one session: it picks the catalog, resumes or starts the
// world state, runs the loop and saves after every tick.
type Worker struct {
	id        string
	opts      Options
	store     pkgstorage.Storage
	catalogs  CatalogSource
	presenter engine.Presenter
	log       *slog.Logger
	session   *engine.Session
	locked    uuid.UUID
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a worker. A nil store disables saving; catalogs are then read
// from opts.DataDir.
func New(store pkgstorage.Storage, presenter engine.Presenter, log *slog.Logger, opts Options) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	if log == nil {
		log = slog.Default()
	}
	if opts.ID == "" {
		opts.ID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	var catalogs CatalogSource = storage.NewCatalogs(opts.DataDir, log)
	if store != nil {
		catalogs = store
	}

	return &Worker{
		id:        opts.ID,
		opts:      opts,
		store:     store,
		catalogs:  catalogs,
		presenter: presenter,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Session returns the running session, nil before Start.
func (w *Worker) Session() *engine.Session { return w.session }

// Start prepares the session and runs it until Stop is called or the
// presentation layer disconnects.
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)
	if err := w.prepare(w.ctx); err != nil {
		return err
	}
	defer w.release()

	err := w.session.Run(w.ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	w.log.Info("Worker shutting down", "worker_id", w.id, "session_id", w.session.WorldState().ID.String())
	return err
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

func (w *Worker) prepare(ctx context.Context) error {
	ws, err := w.resume(ctx)
	if err != nil {
		return err
	}

	name := w.opts.Catalog
	if ws != nil {
		name = ws.Scenario
	}
	scen, err := w.catalog(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	session, err := engine.NewSession(scen, ws, w.presenter, w.log)
	if err != nil {
		return err
	}
	session.WithLoader(w.load).WithAfterTick(w.save)
	if w.opts.Seed != 0 {
		session.WithRand(rand.New(rand.NewPCG(w.opts.Seed, w.opts.Seed)))
	}
	w.session = session

	if err := w.lock(ctx, session.WorldState().ID); err != nil {
		return err
	}
	w.log.Info("Session ready",
		"worker_id", w.id,
		"session_id", session.WorldState().ID.String(),
		"catalog", scen.Name,
		"resumed", ws != nil,
	)
	return nil
}

// resume loads the saved world state named by SessionID, or returns nil to
// start a new game.
func (w *Worker) resume(ctx context.Context) (*state.WorldState, error) {
	if w.opts.SessionID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(w.opts.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", w.opts.SessionID, err)
	}
	if w.store == nil {
		w.log.Warn("No save backend configured, starting a new session", "session_id", id.String())
		return nil, nil
	}

	ws, err := w.store.LoadWorldState(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		w.log.Warn("Saved session not found, starting a new one", "session_id", id.String())
	}
	return ws, nil
}

func (w *Worker) catalog(ctx context.Context, name string) (*scenario.Scenario, error) {
	if name == "" || name == DefaultCatalog {
		return scenario.Default()
	}
	return w.catalogs.GetScenario(ctx, name)
}

// load resolves reload commands. Bare file names are looked up among the
// catalogs; anything with a directory is read from disk as given.
func (w *Worker) load(ctx context.Context, src frontend.DataSource) (*scenario.Scenario, error) {
	switch src.Kind {
	case frontend.SourceRaw:
		return scenario.Parse([]byte(src.Raw), scenario.FormatAuto)
	case frontend.SourcePath:
		if strings.ContainsRune(src.Path, filepath.Separator) || strings.Contains(src.Path, "/") {
			return scenario.LoadFile(src.Path)
		}
		return w.catalog(ctx, src.Path)
	default:
		return scenario.Default()
	}
}

// save runs after every tick. A failed save is reported but does not stop play.
func (w *Worker) save(ctx context.Context, ws *state.WorldState) error {
	if w.store == nil {
		return nil
	}
	if err := w.lock(ctx, ws.ID); err != nil {
		return err
	}
	if err := w.store.SaveWorldState(ctx, ws.ID, ws); err != nil {
		w.log.Error("Autosave failed", "error", err, "session_id", ws.ID.String())
		w.presenter.Debug("autosave failed: " + err.Error())
		return nil
	}
	w.log.Debug("Autosaved", "session_id", ws.ID.String())
	return nil
}

// lock takes or extends the session lock on backends that support it. A
// reload starts a new session, so the old lock is released first.
func (w *Worker) lock(ctx context.Context, id uuid.UUID) error {
	locker, ok := w.store.(pkgstorage.SessionLocker)
	if !ok {
		return nil
	}
	if w.locked != uuid.Nil && w.locked != id {
		w.release()
	}
	held, err := locker.AcquireSessionLock(ctx, id, w.id, lockTTL)
	if err != nil {
		return err
	}
	if !held {
		return fmt.Errorf("%w: %s", ErrSessionLocked, id)
	}
	w.locked = id
	return nil
}

func (w *Worker) release() {
	locker, ok := w.store.(pkgstorage.SessionLocker)
	if !ok || w.locked == uuid.Nil {
		return
	}
	// The worker context may already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := locker.ReleaseSessionLock(ctx, w.locked, w.id); err != nil {
		w.log.Error("Failed to release session lock", "error", err, "session_id", w.locked.String())
	}
	w.locked = uuid.Nil
}
