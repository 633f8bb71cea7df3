package state

import "github.com/jwebster45206/narrative-engine/pkg/scenario"

// AttributeValue is the current value of one attribute.
type AttributeValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// AttributeStore keeps attribute values in catalog order so they can be
// addressed by position as well as by name.
type AttributeStore []AttributeValue

// NewAttributeStore seeds a store with each definition's default.
func NewAttributeStore(defs []scenario.AttributeDef) AttributeStore {
	store := make(AttributeStore, 0, len(defs))
	for _, d := range defs {
		store = append(store, AttributeValue{Name: d.Name, Value: d.Clamp(d.Default)})
	}
	return store
}

// Get returns the value of the named attribute.
func (s AttributeStore) Get(name string) (int, bool) {
	if i := s.index(name); i >= 0 {
		return s[i].Value, true
	}
	return 0, false
}

// Resolve returns the position addressed by ref, or -1.
func (s AttributeStore) Resolve(ref scenario.AttributeRef) int {
	if ref.Index != nil {
		if *ref.Index < 0 || *ref.Index >= len(s) {
			return -1
		}
		return *ref.Index
	}
	return s.index(ref.Name)
}

func (s AttributeStore) index(name string) int {
	for i := range s {
		if s[i].Name == name {
			return i
		}
	}
	return -1
}
