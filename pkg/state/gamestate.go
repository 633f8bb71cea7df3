package state

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/narrative-engine/pkg/conditionals"
	"github.com/jwebster45206/narrative-engine/pkg/scenario"
)

// Item is an inventory entry. Value is either a scalar or a structured
// record (map[string]any) whose keys act as tags.
type Item struct {
	Value any `json:"value,omitempty"`
	Count int `json:"count"`
}

// Cursor points at the running event and segment. An empty Segment means the
// event's first segment.
type Cursor struct {
	Event   string `json:"event"`
	Segment string `json:"segment,omitempty"`
}

// WorldState is the mutable state of a session.
type WorldState struct {
	ID         uuid.UUID       `json:"id"`                 // Unique ID per session
	Scenario   string          `json:"scenario,omitempty"` // Catalog file name, "default" for the built-in one
	Attributes AttributeStore  `json:"attributes"`
	Items      map[string]Item `json:"items,omitempty"`
	Location   string          `json:"location"`
	Clock      time.Time       `json:"clock"` // simulated date and time
	Triggers   TriggerSet      `json:"triggers,omitempty"`
	Cursor     *Cursor         `json:"cursor,omitempty"` // nil while idle
	Stuck      bool            `json:"stuck,omitempty"`  // the running event suppresses world actions
	UpdatedAt  time.Time       `json:"updated_at"`
}

var _ conditionals.GameStateView = (*WorldState)(nil)

// NewWorldState creates the state for a fresh session of scen: default
// attribute values, starting inventory, start location and time, and the
// init trigger.
func NewWorldState(scen *scenario.Scenario) (*WorldState, error) {
	start, err := scen.StartTime()
	if err != nil {
		return nil, fmt.Errorf("failed to create world state: %w", err)
	}

	items := make(map[string]Item, len(scen.Settings.Items))
	for name, seed := range scen.Settings.Items {
		items[name] = Item{Value: seed.Value, Count: seed.Count}
	}

	return &WorldState{
		ID:         uuid.New(),
		Scenario:   scen.FileName,
		Attributes: NewAttributeStore(scen.Attributes),
		Items:      items,
		Location:   scen.StartLocation(),
		Clock:      start,
		Triggers:   NewTriggerSet(scenario.Init()),
	}, nil
}

func (ws *WorldState) GetLocation() string { return ws.Location }
func (ws *WorldState) GetTime() time.Time  { return ws.Clock }

func (ws *WorldState) GetAttribute(name string) (int, bool) {
	return ws.Attributes.Get(name)
}

func (ws *WorldState) GetItem(name string) (any, int, bool) {
	item, ok := ws.Items[name]
	if !ok {
		return nil, 0, false
	}
	return item.Value, item.Count, true
}

// Active reports whether an event is running.
func (ws *WorldState) Active() bool { return ws.Cursor != nil }

// AddTrigger makes t visible to the next scheduling pass.
func (ws *WorldState) AddTrigger(t scenario.Trigger) {
	if ws.Triggers == nil {
		ws.Triggers = make(TriggerSet)
	}
	ws.Triggers.Add(t)
}

// Advance moves the clock forward.
func (ws *WorldState) Advance(minutes int) {
	ws.Clock = ws.Clock.Add(time.Duration(minutes) * time.Minute)
}

// Enter points the cursor at event/segment.
func (ws *WorldState) Enter(event, segment string, stuck bool) {
	ws.Cursor = &Cursor{Event: event, Segment: segment}
	ws.Stuck = stuck
}

// Leave clears the cursor.
func (ws *WorldState) Leave() {
	ws.Cursor = nil
	ws.Stuck = false
}
