package frontend

import "github.com/jwebster45206/narrative-engine/pkg/scenario"

// Option is an entry of the option list.
type Option struct {
	Text    string `json:"text"`
	Enabled bool   `json:"enabled"`
}

// AttributeDisplay is a (name, value, max) triple for the status panel.
type AttributeDisplay struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Max   int    `json:"max"`
}

// Snapshot is what the simulation sends to the presentation layer. Pending
// output accumulates in one Snapshot until it is flushed.
type Snapshot struct {
	Main         string               `json:"main,omitempty"`          // append-only narrative text
	Options      []Option             `json:"options,omitempty"`       // nil: no choice requested
	HideDisabled bool                 `json:"hide_disabled,omitempty"` // hide rather than grey out disabled options
	Status       []string             `json:"status,omitempty"`
	Attributes   []AttributeDisplay   `json:"attributes,omitempty"`
	Avatars      []scenario.AvatarSet `json:"avatars,omitempty"` // forwarded in order
	Errors       []string             `json:"errors,omitempty"`  // recoverable, shown to the player
	Debug        []string             `json:"debug,omitempty"`
}

// AppendText adds a paragraph to the main text.
func (s *Snapshot) AppendText(text string) {
	if text == "" {
		return
	}
	if s.Main != "" && s.Main[len(s.Main)-1] != '\n' {
		s.Main += "\n"
	}
	s.Main += text
}

// Merge folds o into s. Text, options, avatars, errors and debug lines
// accumulate; status and attributes are replaced when o carries them.
func (s *Snapshot) Merge(o Snapshot) {
	s.AppendText(o.Main)
	if o.Options != nil {
		s.Options = append(s.Options, o.Options...)
		s.HideDisabled = o.HideDisabled
	}
	if o.Status != nil {
		s.Status = o.Status
	}
	if o.Attributes != nil {
		s.Attributes = o.Attributes
	}
	s.Avatars = append(s.Avatars, o.Avatars...)
	s.Errors = append(s.Errors, o.Errors...)
	s.Debug = append(s.Debug, o.Debug...)
}

// Empty reports whether there is anything to send.
func (s *Snapshot) Empty() bool {
	return s.Main == "" && s.Options == nil && s.Status == nil && s.Attributes == nil &&
		len(s.Avatars) == 0 && len(s.Errors) == 0 && len(s.Debug) == 0
}

// Take returns the accumulated snapshot and resets s.
func (s *Snapshot) Take() Snapshot {
	out := *s
	*s = Snapshot{}
	return out
}
