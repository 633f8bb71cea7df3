package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/narrative-engine/pkg/conditionals"
	"github.com/jwebster45206/narrative-engine/pkg/frontend"
	"github.com/jwebster45206/narrative-engine/pkg/scenario"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// ErrNoEnabledOption is returned when a silent segment has no option it can
// pick. The event is abandoned.
var ErrNoEnabledOption = errors.New("silent segment has no enabled option")

// Presenter is the simulation's view of the presentation layer.
type Presenter interface {
	Text(text string)
	Error(msg string)
	Debug(msg string)
	Pending() *frontend.Snapshot
	Flush(ctx context.Context) error
	Choose(ctx context.Context, options []frontend.Option, hideDisabled bool) (int, error)
	Poll() (frontend.Command, bool, error)
}

var _ Presenter = (*frontend.Boundary)(nil)

// Machine walks the segments of the running event. It is either idle
// (ws.Cursor == nil) or in an event at a segment.
type Machine struct {
	scenario  *scenario.Scenario
	worker    *state.ModifierWorker
	presenter Presenter
	env       conditionals.Env
	logger    *slog.Logger
}

func NewMachine(scen *scenario.Scenario, worker *state.ModifierWorker, presenter Presenter, env conditionals.Env, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{scenario: scen, worker: worker, presenter: presenter, env: env, logger: logger}
}

// Step runs the current segment once: show it, take a choice, apply the
// choice and move the cursor. blocked reports whether the player was asked
// to choose.
func (m *Machine) Step(ctx context.Context, ws *state.WorldState) (blocked bool, err error) {
	if ws.Cursor == nil {
		return false, nil
	}
	cur := *ws.Cursor

	ev, ok := m.scenario.Event(cur.Event)
	if !ok {
		m.logger.Warn("Active event not in catalog", "event", cur.Event)
		ws.Leave()
		return false, nil
	}
	seg, ok := ev.Segment(cur.Segment)
	if !ok {
		m.logger.Warn("Segment not found, leaving event", "event", ev.Name, "segment", cur.Segment)
		ws.Leave()
		return false, nil
	}

	m.presenter.Text(seg.Text)
	if len(seg.Options) == 0 {
		ws.Leave()
		return false, nil
	}

	options, err := m.options(seg, ws)
	if err != nil {
		return false, err
	}

	var idx int
	if seg.Silent {
		idx = firstEnabled(options)
		if idx < 0 {
			ws.Leave()
			return false, fmt.Errorf("event %q: %w", ev.Name, ErrNoEnabledOption)
		}
	} else {
		idx, err = m.presenter.Choose(ctx, options, seg.HideDisabledOptions)
		if err != nil {
			return true, err
		}
		blocked = true
	}

	return blocked, m.choose(ws, ev, seg.Options[idx])
}

func (m *Machine) options(seg *scenario.Segment, ws *state.WorldState) ([]frontend.Option, error) {
	out := make([]frontend.Option, len(seg.Options))
	for i, opt := range seg.Options {
		enabled, err := conditionals.EvaluateOptional(opt.Condition, ws, m.env)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate option %q: %w", opt.Text, err)
		}
		out[i] = frontend.Option{Text: opt.Text, Enabled: enabled}
	}
	return out, nil
}

func firstEnabled(options []frontend.Option) int {
	for i, o := range options {
		if o.Enabled {
			return i
		}
	}
	return -1
}

// choose applies opt and resolves the next position.
func (m *Machine) choose(ws *state.WorldState, ev *scenario.Event, opt scenario.Option) error {
	if err := m.worker.Apply(opt.Modifier); err != nil {
		var travelErr *state.TravelError
		if !errors.As(err, &travelErr) {
			return fmt.Errorf("failed to apply option %q of event %q: %w", opt.Text, ev.Name, err)
		}
		m.presenter.Error(travelErr.Error())
	}

	if opt.Avatar != nil {
		snap := m.presenter.Pending()
		snap.Avatars = append(snap.Avatars, *opt.Avatar)
	}
	for _, t := range opt.Triggers {
		ws.AddTrigger(t)
	}

	switch {
	case opt.JumpToEvent != "":
		target, ok := m.scenario.Event(opt.JumpToEvent)
		if !ok {
			m.logger.Warn("Jump to unknown event", "from", ev.Name, "to", opt.JumpToEvent)
			ws.Leave()
			return nil
		}
		ws.Enter(target.Name, opt.JumpTo, target.Stuck)
	case opt.JumpTo != "":
		if _, ok := ev.Segment(opt.JumpTo); !ok {
			m.logger.Warn("Jump to unknown segment", "event", ev.Name, "segment", opt.JumpTo)
			ws.Leave()
			return nil
		}
		ws.Enter(ev.Name, opt.JumpTo, ev.Stuck)
	default:
		ws.Leave()
	}
	return nil
}
