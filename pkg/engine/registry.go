package engine

import (
	"log/slog"

	"github.com/jwebster45206/narrative-engine/pkg/scenario"
)

// Registry maps each trigger to the events it makes candidates. It is built
// once per catalog and never changes.
type Registry struct {
	byTrigger map[scenario.Trigger][]string
}

// NewRegistry folds the catalog's trigger bindings. A trigger bound more than
// once keeps every event, in binding order. Bindings to unknown events are
// skipped.
func NewRegistry(scen *scenario.Scenario, logger *slog.Logger) *Registry {
	r := &Registry{byTrigger: make(map[scenario.Trigger][]string)}
	for _, b := range scen.Triggers {
		if !scen.HasEvent(b.Event) {
			if logger != nil {
				logger.Warn("Trigger bound to unknown event", "trigger", b.On.String(), "event", b.Event)
			}
			continue
		}
		r.byTrigger[b.On] = append(r.byTrigger[b.On], b.Event)
	}
	return r
}

// Candidates returns the events bound to t.
func (r *Registry) Candidates(t scenario.Trigger) []string {
	return r.byTrigger[t]
}
