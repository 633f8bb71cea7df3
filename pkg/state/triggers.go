package state

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/jwebster45206/narrative-engine/pkg/scenario"
)

// TriggerSet is the set of triggers active for the next scheduling pass.
// It serializes as a sorted list of trigger strings.
type TriggerSet map[scenario.Trigger]struct{}

// NewTriggerSet returns a set holding ts.
func NewTriggerSet(ts ...scenario.Trigger) TriggerSet {
	set := make(TriggerSet, len(ts))
	for _, t := range ts {
		set[t] = struct{}{}
	}
	return set
}

func (s TriggerSet) Add(t scenario.Trigger) { s[t] = struct{}{} }

func (s TriggerSet) Has(t scenario.Trigger) bool {
	_, ok := s[t]
	return ok
}

// Clear empties the set in place.
func (s TriggerSet) Clear() { clear(s) }

// Sorted returns the members ordered by their string form.
func (s TriggerSet) Sorted() []scenario.Trigger {
	out := make([]scenario.Trigger, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b scenario.Trigger) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}

func (s TriggerSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *TriggerSet) UnmarshalJSON(data []byte) error {
	var list []scenario.Trigger
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = NewTriggerSet(list...)
	return nil
}
