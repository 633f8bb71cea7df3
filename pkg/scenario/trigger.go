package scenario

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TriggerKind identifies what happened to raise a trigger.
type TriggerKind string

const (
	TriggerReached TriggerKind = "reached" // the player just arrived at Tag
	TriggerStay    TriggerKind = "stay"    // the player is staying at Tag
	TriggerAlways  TriggerKind = "always"  // seeded on every tick
	TriggerInit    TriggerKind = "init"    // only present on the first tick of a session
	TriggerPreInit TriggerKind = "pre_init"
	TriggerCustom  TriggerKind = "custom" // raised by catalog options
)

// Trigger is an ephemeral tag describing what just happened. It is comparable
// and used as a map key by the registry and the world state trigger set.
type Trigger struct {
	Kind TriggerKind `json:"kind"`
	Tag  string      `json:"tag,omitempty"`
}

func Always() Trigger { return Trigger{Kind: TriggerAlways} }
func Init() Trigger { return Trigger{Kind: TriggerInit} }
func Reached(location string) Trigger { return Trigger{Kind: TriggerReached, Tag: location} }
func Stay(location string) Trigger { return Trigger{Kind: TriggerStay, Tag: location} }
func Custom(tag string) Trigger { return Trigger{Kind: TriggerCustom, Tag: tag} }

// ParseTrigger reads the short string form used in catalogs:
// "always", "init", "pre_init", "reached:<loc>", "stay:<loc>", "custom:<tag>".
// Any other string is a custom tag.
func ParseTrigger(s string) (Trigger, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Trigger{}, fmt.Errorf("empty trigger")
	}

	kind, tag, hasTag := strings.Cut(s, ":")
	switch TriggerKind(kind) {
	case TriggerAlways, TriggerInit, TriggerPreInit:
		if hasTag {
			return Trigger{}, fmt.Errorf("trigger %q takes no tag", kind)
		}
		return Trigger{Kind: TriggerKind(kind)}, nil
	case TriggerReached, TriggerStay, TriggerCustom:
		if !hasTag || tag == "" {
			return Trigger{}, fmt.Errorf("trigger %q requires a tag", kind)
		}
		return Trigger{Kind: TriggerKind(kind), Tag: tag}, nil
	}

	return Custom(s), nil
}

// String returns the form accepted by ParseTrigger.
func (t Trigger) String() string {
	if t.Tag == "" {
		return string(t.Kind)
	}
	return string(t.Kind) + ":" + t.Tag
}

func (t Trigger) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts both the short string form and the {"kind","tag"} object.
func (t *Trigger) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		parsed, err := ParseTrigger(str)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}

	type Alias Trigger
	var aux Alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	parsed, err := ParseTrigger(Trigger(aux).String())
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TriggerBinding registers Event as a candidate whenever On is active.
type TriggerBinding struct {
	Event string  `json:"event"`
	On    Trigger `json:"on"`
}
