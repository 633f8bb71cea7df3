package scenario

import "github.com/jwebster45206/narrative-engine/pkg/conditionals"

// Location is a node of the world map.
type Location struct {
	Name        string       `json:"name"`                   // Also the key in the map.
	DisplayName string       `json:"display_name,omitempty"` // Shown to the player; falls back to Name
	Description string       `json:"description,omitempty"`
	Connections []Connection `json:"connections,omitempty"`
}

// Connection is a one-way edge to another location.
type Connection struct {
	To        string                  `json:"to"`
	Minutes   int                     `json:"minutes,omitempty"` // travel time
	Name      string                  `json:"name,omitempty"`    // optional label for the travel option
	Condition *conditionals.Condition `json:"condition,omitempty"`
}

// Label returns the text to show for the location.
func (l Location) Label() string {
	if l.DisplayName != "" {
		return l.DisplayName
	}
	return l.Name
}

// Connection returns the edge from l to the named location.
func (l Location) Connection(to string) (Connection, bool) {
	for _, c := range l.Connections {
		if c.To == to {
			return c, true
		}
	}
	return Connection{}, false
}
