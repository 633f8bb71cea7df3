package scenario

import "github.com/jwebster45206/narrative-engine/pkg/conditionals"

// Event is a named, prioritized unit of narrative content.
type Event struct {
	Name      string                 `json:"name"`
	Priority  uint32                 `json:"priority,omitempty"` // lower number = more urgent
	Force     bool                   `json:"force,omitempty"`    // once active, cannot be preempted
	Condition conditionals.Condition `json:"condition,omitzero"` // eligibility gate; zero value holds
	Segments  []Segment              `json:"segments"`
	Stuck     bool                   `json:"stuck,omitempty"` // suppress world actions while active
}

// Segment is one beat of an event: text plus the options offered.
type Segment struct {
	Name                string   `json:"name,omitempty"`
	Text                string   `json:"text,omitempty"`
	Silent              bool     `json:"silent,omitempty"` // auto-pick the first enabled option
	Options             []Option `json:"options,omitempty"`
	HideDisabledOptions bool     `json:"hide_disabled_options,omitempty"`
}

// Option is a choosable branch within a segment.
type Option struct {
	Text        string                  `json:"text"`
	Condition   *conditionals.Condition `json:"condition,omitempty"`     // nil: always enabled
	JumpTo      string                  `json:"jump_to,omitempty"`       // segment in the same (or target) event
	JumpToEvent string                  `json:"jump_to_event,omitempty"` // ends the current event
	Triggers    []Trigger               `json:"triggers,omitempty"`      // raised when chosen
	Avatar      *AvatarSet              `json:"avatar,omitempty"`
	Modifier    Modifier                `json:"modifier,omitzero"`
}

// AvatarKind says how an avatar directive changes the displayed portrait.
type AvatarKind string

const (
	AvatarMain            AvatarKind = "main"              // replace the image and drop decorations
	AvatarDeco            AvatarKind = "deco"              // add a decoration
	AvatarMainKeepingDeco AvatarKind = "main_keeping_deco" // replace the image, keep decorations
)

// AvatarSet is forwarded unchanged to the presentation layer, which owns asset lookup.
type AvatarSet struct {
	Kind AvatarKind `json:"kind"`
	Key  string     `json:"key"`
}

// Segment returns the named segment. An empty name resolves to the first
// segment; an unknown name is not found.
func (e *Event) Segment(name string) (*Segment, bool) {
	if name == "" {
		if len(e.Segments) == 0 {
			return nil, false
		}
		return &e.Segments[0], true
	}
	for i := range e.Segments {
		if e.Segments[i].Name == name {
			return &e.Segments[i], true
		}
	}
	return nil, false
}
