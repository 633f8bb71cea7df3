package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/narrative-engine/pkg/conditionals"
	"github.com/jwebster45206/narrative-engine/pkg/scenario"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// Scheduler picks which event runs.
type Scheduler struct {
	scenario *scenario.Scenario
	registry *Registry
	env      conditionals.Env
	logger   *slog.Logger
}

func NewScheduler(scen *scenario.Scenario, registry *Registry, env conditionals.Env, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{scenario: scen, registry: registry, env: env, logger: logger}
}

// Seed adds the triggers that hold on every tick: always, and stay at the
// current location.
func (s *Scheduler) Seed(ws *state.WorldState) {
	ws.AddTrigger(scenario.Always())
	ws.AddTrigger(scenario.Stay(ws.Location))
}

// Candidates returns the deduplicated names of events bound to any active trigger.
func (s *Scheduler) Candidates(ws *state.WorldState) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range ws.Triggers.Sorted() {
		for _, name := range s.registry.Candidates(t) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Select returns the event that should become active, or nil to leave the
// world as it is. A forced active event is never replaced. Otherwise the
// most urgent eligible candidate wins; with an event active, a candidate
// must be strictly more urgent than it.
func (s *Scheduler) Select(ws *state.WorldState) (*scenario.Event, error) {
	var active *scenario.Event
	if ws.Cursor != nil {
		active, _ = s.scenario.Event(ws.Cursor.Event)
	}
	if active != nil && active.Force {
		return nil, nil
	}

	var best *scenario.Event
	for _, name := range s.Candidates(ws) {
		ev, ok := s.scenario.Event(name)
		if !ok {
			continue
		}
		if active != nil && (ev.Name == active.Name || ev.Priority >= active.Priority) {
			continue
		}
		if best != nil && !moreUrgent(ev, best) {
			continue
		}
		eligible, err := conditionals.Evaluate(ev.Condition, ws, s.env)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate condition of event %q: %w", ev.Name, err)
		}
		if eligible {
			best = ev
		}
	}

	if best != nil {
		s.logger.Debug("Event selected", "event", best.Name, "priority", best.Priority)
	}
	return best, nil
}

// moreUrgent orders events for selection. A LOWER priority number is MORE
// urgent; equal priorities fall back to the lexicographically smaller name.
func moreUrgent(a, b *scenario.Event) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return strings.Compare(a.Name, b.Name) < 0
}
