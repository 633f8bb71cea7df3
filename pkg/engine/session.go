package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jwebster45206/narrative-engine/pkg/conditionals"
	"github.com/jwebster45206/narrative-engine/pkg/frontend"
	"github.com/jwebster45206/narrative-engine/pkg/scenario"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// Loader reads the catalog named by a reload command.
type Loader func(ctx context.Context, src frontend.DataSource) (*scenario.Scenario, error)

// TickHook runs after every completed tick, e.g. to autosave.
type TickHook func(ctx context.Context, ws *state.WorldState) error

// Session runs the tick loop for one catalog and world state. Only the
// goroutine calling Tick or Run touches the world state.
type Session struct {
	scenario  *scenario.Scenario
	ws        *state.WorldState
	presenter Presenter
	env       conditionals.Env
	logger    *slog.Logger
	loader    Loader
	afterTick TickHook

	registry  *Registry
	scheduler *Scheduler
	machine   *Machine
	worker    *state.ModifierWorker
}

// NewSession creates a session for scen. A nil ws starts a new game.
func NewSession(scen *scenario.Scenario, ws *state.WorldState, presenter Presenter, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if ws == nil {
		var err error
		ws, err = state.NewWorldState(scen)
		if err != nil {
			return nil, err
		}
	}
	s := &Session{
		scenario:  scen,
		ws:        ws,
		presenter: presenter,
		env:       conditionals.Env{Rand: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))},
		logger:    logger,
	}
	s.wire()
	return s, nil
}

// WithRand sets the source for random conditions.
// Returns the Session for method chaining
func (s *Session) WithRand(r *rand.Rand) *Session {
	s.env.Rand = r
	s.wire()
	return s
}

// WithLoader sets how reload commands read catalogs. Without one, reloads
// can only restore the built-in catalog.
// Returns the Session for method chaining
func (s *Session) WithLoader(l Loader) *Session {
	s.loader = l
	return s
}

// WithAfterTick registers a hook run after every tick.
// Returns the Session for method chaining
func (s *Session) WithAfterTick(h TickHook) *Session {
	s.afterTick = h
	return s
}

func (s *Session) wire() {
	s.registry = NewRegistry(s.scenario, s.logger)
	s.scheduler = NewScheduler(s.scenario, s.registry, s.env, s.logger)
	s.worker = state.NewModifierWorker(s.ws, s.scenario, s.logger).WithEnv(s.env)
	s.machine = NewMachine(s.scenario, s.worker, s.presenter, s.env, s.logger)
}

func (s *Session) Scenario() *scenario.Scenario { return s.scenario }
func (s *Session) WorldState() *state.WorldState { return s.ws }

// Tick runs one pass of the loop: seed triggers, schedule, step the state
// machine, then offer world actions if the player was not already asked
// to choose. Triggers raised during the tick are scheduled on the next one.
func (s *Session) Tick(ctx context.Context) error {
	ws := s.ws

	s.scheduler.Seed(ws)
	next, err := s.scheduler.Select(ws)
	if err != nil {
		return err
	}
	if next != nil {
		if ws.Cursor != nil {
			s.logger.Info("Event preempted", "event", ws.Cursor.Event, "by", next.Name)
		}
		ws.Enter(next.Name, "", next.Stuck)
	}
	ws.Triggers.Clear()

	s.pushStatus()
	blocked, err := s.machine.Step(ctx, ws)
	switch {
	case errors.Is(err, ErrNoEnabledOption):
		s.logger.Warn("Event abandoned", "error", err)
		s.presenter.Debug(err.Error())
	case err != nil:
		return err
	}

	if !blocked && !ws.Stuck {
		s.pushStatus()
		if err := s.worldActions(ctx); err != nil {
			return err
		}
	}
	s.pushStatus()
	if err := s.presenter.Flush(ctx); err != nil {
		return err
	}

	ws.UpdatedAt = time.Now()
	if s.afterTick != nil {
		if err := s.afterTick(ctx, ws); err != nil {
			return fmt.Errorf("after tick: %w", err)
		}
	}
	return nil
}

func (s *Session) pushStatus() {
	snap := s.presenter.Pending()
	snap.Status = s.ws.StatusLines(s.scenario)
	if snap.Status == nil {
		snap.Status = []string{}
	}
	displays := s.ws.AttributeDisplays(s.scenario)
	snap.Attributes = make([]frontend.AttributeDisplay, len(displays))
	for i, d := range displays {
		snap.Attributes[i] = frontend.AttributeDisplay{Name: d.Label, Value: d.Value, Max: d.Max}
	}
}

// worldActions offers waiting and travel along the current location's connections.
func (s *Session) worldActions(ctx context.Context) error {
	dests, err := s.worker.Destinations()
	if err != nil {
		return err
	}

	wait := s.scenario.WaitMinutes()
	options := make([]frontend.Option, 0, len(dests)+1)
	options = append(options, frontend.Option{Text: fmt.Sprintf("Wait (%d min)", wait), Enabled: true})
	for _, d := range dests {
		options = append(options, frontend.Option{
			Text:    fmt.Sprintf("%s (%d min)", d.Label, d.Connection.Minutes),
			Enabled: d.Open,
		})
	}

	idx, err := s.presenter.Choose(ctx, options, false)
	if err != nil {
		return err
	}
	if idx == 0 {
		s.ws.Advance(wait)
		return nil
	}

	dest := dests[idx-1]
	if err := s.worker.Follow(dest); err != nil {
		var travelErr *state.TravelError
		if errors.As(err, &travelErr) {
			s.presenter.Error(travelErr.Error())
			return nil
		}
		return err
	}
	if loc, ok := s.scenario.Location(dest.Connection.To); ok {
		s.presenter.Text(fmt.Sprintf("You arrive at %s.", loc.Label()))
	}
	return nil
}

// Run ticks until ctx is cancelled or the presentation layer disconnects.
// Administrative commands interrupt the current tick and are applied
// before the next one. Any other tick error is logged, echoed to the debug
// area, and the loop waits for the player to continue.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd, ok, err := s.presenter.Poll()
		if errors.Is(err, frontend.ErrDisconnected) {
			return nil
		}
		if ok && cmd.Type != frontend.CmdChoice {
			s.Apply(ctx, cmd)
			continue
		}

		err = s.Tick(ctx)
		if err != nil && !isControl(err) {
			s.logger.Error("Tick failed", "error", err, "session_id", s.ws.ID.String())
			s.presenter.Debug(err.Error())
			_, err = s.presenter.Choose(ctx, []frontend.Option{{Text: "Continue", Enabled: true}}, false)
		}

		var interrupt *frontend.Interrupt
		switch {
		case err == nil:
		case errors.As(err, &interrupt):
			s.Apply(ctx, interrupt.Command)
		case errors.Is(err, frontend.ErrDisconnected):
			s.logger.Info("Presentation layer disconnected, ending session", "session_id", s.ws.ID.String())
			return nil
		default:
			return err
		}
	}
}

// isControl reports whether err steers the loop rather than reporting a failure.
func isControl(err error) bool {
	var interrupt *frontend.Interrupt
	return errors.As(err, &interrupt) ||
		errors.Is(err, frontend.ErrDisconnected) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Apply handles an administrative command between ticks.
func (s *Session) Apply(ctx context.Context, cmd frontend.Command) {
	switch cmd.Type {
	case frontend.CmdReload:
		if err := s.Reload(ctx, cmd.Source); err != nil {
			s.logger.Error("Reload failed", "error", err, "source", cmd.Source.String())
			s.presenter.Error(err.Error())
			return
		}
		s.presenter.Debug("reloaded " + cmd.Source.String())
	case frontend.CmdSetAttribute:
		if err := s.worker.SetAttribute(cmd.Attribute, cmd.Value); err != nil {
			s.presenter.Error(err.Error())
			return
		}
		v, _ := s.ws.GetAttribute(cmd.Attribute)
		s.presenter.Debug(fmt.Sprintf("%s = %d", cmd.Attribute, v))
	default:
		s.logger.Debug("Ignoring command outside a choice", "command", cmd.String())
	}
}

// Reload replaces the catalog and starts a fresh world state. On failure the
// current session is left untouched.
func (s *Session) Reload(ctx context.Context, src frontend.DataSource) error {
	scen, err := s.load(ctx, src)
	if err != nil {
		return err
	}
	ws, err := state.NewWorldState(scen)
	if err != nil {
		return err
	}

	s.logger.Info("Catalog reloaded", "source", src.String(), "old_session_id", s.ws.ID.String(), "session_id", ws.ID.String())
	s.scenario = scen
	s.ws = ws
	s.wire()
	return nil
}

func (s *Session) load(ctx context.Context, src frontend.DataSource) (*scenario.Scenario, error) {
	if s.loader != nil {
		return s.loader(ctx, src)
	}
	switch src.Kind {
	case frontend.SourceRaw:
		return scenario.Parse([]byte(src.Raw), scenario.FormatAuto)
	case frontend.SourceDefault, "":
		return scenario.Default()
	}
	return nil, fmt.Errorf("cannot load %s: no loader configured", src)
}
