package state

import (
	"fmt"

	"github.com/jwebster45206/narrative-engine/pkg/conditionals"
	"github.com/jwebster45206/narrative-engine/pkg/scenario"
)

// TravelError is a recoverable travel failure. Its message is meant for the player.
type TravelError struct {
	From   string
	To     string
	Reason string
}

func (e *TravelError) Error() string {
	return fmt.Sprintf("cannot travel from %s to %s: %s", e.From, e.To, e.Reason)
}

// Travel moves the player along a map connection from the current location,
// advancing the clock by the connection's travel time.
func (mw *ModifierWorker) Travel(to string) error {
	from := mw.ws.Location
	loc, ok := mw.scenario.Location(from)
	if !ok {
		return &TravelError{From: from, To: to, Reason: "the current location is not on the map"}
	}
	conn, ok := loc.Connection(to)
	if !ok {
		return &TravelError{From: from, To: to, Reason: "there is no way there"}
	}

	open, err := conditionals.EvaluateOptional(conn.Condition, mw.ws, mw.env)
	if err != nil {
		return fmt.Errorf("failed to evaluate connection condition: %w", err)
	}
	return mw.Follow(Destination{Connection: conn, Open: open})
}

// Follow travels to a destination returned by Destinations. Its Open flag is
// used as evaluated; the connection condition is not checked again.
func (mw *ModifierWorker) Follow(d Destination) error {
	if !d.Open {
		return &TravelError{From: mw.ws.Location, To: d.Connection.To, Reason: "the way is blocked"}
	}
	mw.ws.Advance(d.Connection.Minutes)
	mw.relocate(d.Connection.To)
	return nil
}

// Destinations lists the connections leaving the current location with
// whether each is currently open.
func (mw *ModifierWorker) Destinations() ([]Destination, error) {
	loc, ok := mw.scenario.Location(mw.ws.Location)
	if !ok {
		return nil, nil
	}
	out := make([]Destination, 0, len(loc.Connections))
	for _, c := range loc.Connections {
		open, err := conditionals.EvaluateOptional(c.Condition, mw.ws, mw.env)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate connection to %s: %w", c.To, err)
		}
		out = append(out, Destination{Connection: c, Label: destinationLabel(mw.scenario, c), Open: open})
	}
	return out, nil
}

// Destination is a travel option offered to the player.
type Destination struct {
	Connection scenario.Connection
	Label      string
	Open       bool
}

func destinationLabel(scen *scenario.Scenario, c scenario.Connection) string {
	if c.Name != "" {
		return c.Name
	}
	if to, ok := scen.Location(c.To); ok {
		return "Go to " + to.Label()
	}
	return "Go to " + c.To
}
