package state

import (
	"strings"

	"github.com/jwebster45206/narrative-engine/pkg/scenario"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxStatusLines caps the threshold descriptions shown at once.
const MaxStatusLines = 2

// AttributeDisplay is a visible attribute as shown to the player.
type AttributeDisplay struct {
	Label string
	Value int
	Max   int
}

// StatusLines returns the over/under threshold descriptions of visible
// attributes, in attribute order, at most MaxStatusLines of them.
func (ws *WorldState) StatusLines(scen *scenario.Scenario) []string {
	var lines []string
	for _, av := range ws.Attributes {
		def, ok := scen.Attribute(av.Name)
		if !ok || def.Invisible {
			continue
		}
		if def.OverMaxDesc != "" && av.Value > def.OverMax {
			lines = append(lines, def.OverMaxDesc)
		}
		if def.UnderMinDesc != "" && av.Value < def.UnderMin {
			lines = append(lines, def.UnderMinDesc)
		}
		if len(lines) >= MaxStatusLines {
			return lines[:MaxStatusLines]
		}
	}
	return lines
}

// AttributeDisplays lists the visible attributes with their maximums.
func (ws *WorldState) AttributeDisplays(scen *scenario.Scenario) []AttributeDisplay {
	title := cases.Title(language.English)
	out := make([]AttributeDisplay, 0, len(ws.Attributes))
	for _, av := range ws.Attributes {
		def, ok := scen.Attribute(av.Name)
		if !ok || def.Invisible {
			continue
		}
		out = append(out, AttributeDisplay{
			Label: title.String(strings.ReplaceAll(av.Name, "_", " ")),
			Value: av.Value,
			Max:   def.Max,
		})
	}
	return out
}
