package scenario

import (
	"fmt"
	"time"
)

// DefaultStartTime is used when a catalog does not set one.
var DefaultStartTime = time.Date(2024, 1, 2, 7, 0, 0, 0, time.UTC)

const (
	DefaultStartLocation = "town"
	DefaultWaitMinutes   = 30
	startTimeLayout      = "2006-01-02 15:04"
)

// Scenario is the immutable catalog for a session: attribute definitions,
// the world map, events and trigger bindings. A reload replaces it whole.
type Scenario struct {
	Name       string           `json:"name"`
	FileName   string           `json:"file_name,omitempty"` // Name of the file the catalog was read from
	Settings   Settings         `json:"settings,omitzero"`
	Attributes []AttributeDef   `json:"attributes,omitempty"`
	Locations  []Location       `json:"locations,omitempty"`
	Events     []Event          `json:"events,omitempty"`
	Triggers   []TriggerBinding `json:"triggers,omitempty"`

	attrIndex     map[string]int
	eventIndex    map[string]int
	locationIndex map[string]int
}

// Settings are session start parameters.
type Settings struct {
	StartLocation string              `json:"start_location,omitempty"`
	StartTime     string              `json:"start_time,omitempty"` // "2006-01-02 15:04"
	WaitMinutes   int                 `json:"wait_minutes,omitempty"`
	Items         map[string]ItemSeed `json:"items,omitempty"` // starting inventory
}

// ItemSeed is a starting inventory entry.
type ItemSeed struct {
	Count int `json:"count"`
	Value any `json:"value,omitempty"`
}

// index builds the name lookups. Called once by the loader.
func (s *Scenario) index() {
	s.attrIndex = make(map[string]int, len(s.Attributes))
	for i, a := range s.Attributes {
		s.attrIndex[a.Name] = i
	}
	s.eventIndex = make(map[string]int, len(s.Events))
	for i, e := range s.Events {
		s.eventIndex[e.Name] = i
	}
	s.locationIndex = make(map[string]int, len(s.Locations))
	for i, l := range s.Locations {
		s.locationIndex[l.Name] = i
	}
}

// Attribute returns the definition for name.
func (s *Scenario) Attribute(name string) (AttributeDef, bool) {
	if s.attrIndex == nil {
		s.index()
	}
	i, ok := s.attrIndex[name]
	if !ok {
		return AttributeDef{}, false
	}
	return s.Attributes[i], true
}

// Event returns the event with the given name.
func (s *Scenario) Event(name string) (*Event, bool) {
	if s.eventIndex == nil {
		s.index()
	}
	i, ok := s.eventIndex[name]
	if !ok {
		return nil, false
	}
	return &s.Events[i], true
}

// HasEvent checks if an event exists in the catalog.
func (s *Scenario) HasEvent(name string) bool {
	_, ok := s.Event(name)
	return ok
}

// Location returns the map node with the given name.
func (s *Scenario) Location(name string) (*Location, bool) {
	if s.locationIndex == nil {
		s.index()
	}
	i, ok := s.locationIndex[name]
	if !ok {
		return nil, false
	}
	return &s.Locations[i], true
}

// StartLocation returns the configured start location or the default.
func (s *Scenario) StartLocation() string {
	if s.Settings.StartLocation != "" {
		return s.Settings.StartLocation
	}
	if len(s.Locations) > 0 {
		return s.Locations[0].Name
	}
	return DefaultStartLocation
}

// StartTime returns the configured start time or DefaultStartTime.
func (s *Scenario) StartTime() (time.Time, error) {
	if s.Settings.StartTime == "" {
		return DefaultStartTime, nil
	}
	t, err := time.Parse(startTimeLayout, s.Settings.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start_time %q: %w", s.Settings.StartTime, err)
	}
	return t, nil
}

// WaitMinutes returns how far "wait" advances the clock.
func (s *Scenario) WaitMinutes() int {
	if s.Settings.WaitMinutes > 0 {
		return s.Settings.WaitMinutes
	}
	return DefaultWaitMinutes
}
