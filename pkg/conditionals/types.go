package conditionals

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ConditionType selects which fields of a Condition are meaningful.
type ConditionType string

const (
	TypeTrue            ConditionType = "true"
	TypeFalse           ConditionType = "false"
	TypeTime            ConditionType = "time"
	TypeLocation        ConditionType = "location"
	TypePlayerAttribute ConditionType = "player_attribute"
	TypePlayerItem      ConditionType = "player_item"
	TypeRandom          ConditionType = "random"
	TypeAnd             ConditionType = "and"
	TypeOr              ConditionType = "or"
	TypeXor             ConditionType = "xor"
)

// MaxDepth is the deepest nesting of and/or/xor a catalog may use.
const MaxDepth = 32

// Condition is a boolean predicate over world state. It is a tagged union:
// Type picks the variant and only that variant's fields are read.
// The zero value (empty Type) is always true.
type Condition struct {
	Type ConditionType `json:"type,omitempty"`

	// time
	Days  []string    `json:"days,omitempty"` // weekday names, e.g. "Monday"
	Start ClockTime   `json:"start,omitempty"`
	End   ClockTime   `json:"end,omitempty"`
	Times []ClockTime `json:"times,omitempty"` // optional exact time points

	// location
	Locations []string `json:"locations,omitempty"`

	// player_attribute
	Attributes map[string]Bounds `json:"attributes,omitempty"`

	// player_item
	Items map[string]ItemCheck `json:"items,omitempty"`

	// random
	Probability float64 `json:"probability,omitempty"`

	// and / or / xor
	Conditions []Condition `json:"conditions,omitempty"`
}

// Bounds are exclusive limits on a numeric value.
type Bounds struct {
	GreaterThan *int `json:"greater_than,omitempty"`
	LessThan    *int `json:"less_than,omitempty"`
}

// Contains reports whether v is strictly inside the bounds.
func (b Bounds) Contains(v int) bool {
	if b.GreaterThan != nil && v <= *b.GreaterThan {
		return false
	}
	if b.LessThan != nil && v >= *b.LessThan {
		return false
	}
	return true
}

// ItemCheck describes the expectations on a single inventory entry.
type ItemCheck struct {
	Exists *bool  `json:"exists,omitempty"`
	Count  Bounds `json:"count,omitzero"`
	Tag    string `json:"tag,omitempty"` // key that must exist in a structured item value
}

// True and False are the literal conditions.
var (
	True  = Condition{Type: TypeTrue}
	False = Condition{Type: TypeFalse}
)

// All builds an and-condition.
func All(cs ...Condition) Condition { return Condition{Type: TypeAnd, Conditions: cs} }

// Any builds an or-condition.
func Any(cs ...Condition) Condition { return Condition{Type: TypeOr, Conditions: cs} }

// OneOf builds an xor-condition (odd number of sub-conditions true).
func OneOf(cs ...Condition) Condition { return Condition{Type: TypeXor, Conditions: cs} }

// Depth returns the nesting depth of c. Leaves have depth 1.
func Depth(c Condition) int {
	deepest := 0
	for _, sub := range c.Conditions {
		if d := Depth(sub); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// ClockTime is a time of day in minutes after midnight, written as "HH:MM".
type ClockTime int

// ParseClockTime parses "HH:MM" (24 hour clock).
func ParseClockTime(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock time %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid clock time %q: bad hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q: bad minute", s)
	}
	return ClockTime(h*60 + m), nil
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("clock time must be a \"HH:MM\" string: %w", err)
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
