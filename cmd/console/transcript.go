package main

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/narrative-engine/pkg/scenario"
)

type entryKind int

const (
	entryText entryKind = iota
	entryInput
	entryError
)

type entry struct {
	kind entryKind
	text string
}

// transcript is the append-only main text area.
type transcript struct {
	entries []entry
}

func (t *transcript) add(kind entryKind, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	t.entries = append(t.entries, entry{kind: kind, text: text})
}

func (t transcript) render(width int) string {
	var b strings.Builder
	for _, e := range t.entries {
		wrapped := wordwrap.String(e.text, width)
		switch e.kind {
		case entryInput:
			b.WriteString(userStyle.Render(wrapped))
		case entryError:
			b.WriteString(errorStyle.Render("Error: " + wrapped))
		default:
			b.WriteString(narratorStyle.Render(wrapped))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// plain is the unstyled transcript, for the clipboard.
func (t transcript) plain() string {
	parts := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		if e.kind == entryError {
			parts = append(parts, "Error: "+e.text)
			continue
		}
		parts = append(parts, e.text)
	}
	return strings.Join(parts, "\n\n")
}

// portrait tracks the avatar directives seen so far: one main image and
// any decorations layered on it.
type portrait struct {
	main  string
	decos []string
}

func (p *portrait) apply(a scenario.AvatarSet) {
	switch a.Kind {
	case scenario.AvatarMain:
		p.main = a.Key
		p.decos = nil
	case scenario.AvatarMainKeepingDeco:
		p.main = a.Key
	case scenario.AvatarDeco:
		p.decos = append(p.decos, a.Key)
	}
}

func (p portrait) String() string {
	if p.main == "" && len(p.decos) == 0 {
		return ""
	}
	if len(p.decos) == 0 {
		return p.main
	}
	return p.main + " + " + strings.Join(p.decos, ", ")
}
