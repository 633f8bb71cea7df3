package scenario

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/narrative-engine/pkg/conditionals"
)

var weekdays = map[string]bool{
	"sunday": true, "monday": true, "tuesday": true, "wednesday": true,
	"thursday": true, "friday": true, "saturday": true,
}

// Validate checks the references and invariants a schema cannot express:
// unique names, jump targets, attribute references and nesting depth.
// All problems are reported together.
func Validate(s *Scenario) error {
	v := &validator{s: s}
	v.validate()
	if len(v.errors) == 0 {
		return nil
	}
	return fmt.Errorf("%w:\n%s", ErrInvalidCatalog, strings.Join(v.errors, "\n"))
}

type validator struct {
	s      *Scenario
	errors []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, "  - "+fmt.Sprintf(format, args...))
}

func (v *validator) validate() {
	v.s.index()

	seen := make(map[string]bool)
	for _, a := range v.s.Attributes {
		if a.Name == "" {
			v.addError("attribute has no name")
			continue
		}
		if seen[a.Name] {
			v.addError("attribute %q is defined more than once", a.Name)
		}
		seen[a.Name] = true
		if a.Min > a.Max {
			v.addError("attribute %q has min %d above max %d", a.Name, a.Min, a.Max)
		}
		if a.Default < a.Min || a.Default > a.Max {
			v.addError("attribute %q default %d is outside [%d,%d]", a.Name, a.Default, a.Min, a.Max)
		}
	}

	seen = make(map[string]bool)
	for _, l := range v.s.Locations {
		if seen[l.Name] {
			v.addError("location %q is defined more than once", l.Name)
		}
		seen[l.Name] = true
		for _, c := range l.Connections {
			ctx := fmt.Sprintf("connection %s -> %s", l.Name, c.To)
			v.checkLocation(ctx, c.To)
			if c.Minutes < 0 {
				v.addError("%s has negative travel time", ctx)
			}
			if c.Condition != nil {
				v.checkCondition(ctx, *c.Condition)
			}
		}
	}

	v.validateSettings()

	seen = make(map[string]bool)
	for i := range v.s.Events {
		e := &v.s.Events[i]
		if seen[e.Name] {
			v.addError("event %q is defined more than once", e.Name)
		}
		seen[e.Name] = true
		v.validateEvent(e)
	}

	for _, b := range v.s.Triggers {
		if !v.s.HasEvent(b.Event) {
			v.addError("trigger %s is bound to unknown event %q", b.On, b.Event)
		}
	}
}

func (v *validator) validateSettings() {
	st := v.s.Settings
	if st.StartLocation != "" {
		v.checkLocation("settings.start_location", st.StartLocation)
	}
	if _, err := v.s.StartTime(); err != nil {
		v.addError("settings: %v", err)
	}
	if st.WaitMinutes < 0 {
		v.addError("settings.wait_minutes must not be negative")
	}
	for name, seed := range st.Items {
		if seed.Count <= 0 {
			v.addError("settings.items %q must start with a positive count", name)
		}
	}
}

func (v *validator) validateEvent(e *Event) {
	ctx := fmt.Sprintf("event %q", e.Name)
	if len(e.Segments) == 0 {
		v.addError("%s has no segments", ctx)
	}
	v.checkCondition(ctx+" condition", e.Condition)

	names := make(map[string]bool)
	for _, seg := range e.Segments {
		if seg.Name == "" {
			continue
		}
		if names[seg.Name] {
			v.addError("%s has duplicate segment %q", ctx, seg.Name)
		}
		names[seg.Name] = true
	}

	for si, seg := range e.Segments {
		segCtx := fmt.Sprintf("%s segment %d", ctx, si)
		if seg.Name != "" {
			segCtx = fmt.Sprintf("%s segment %q", ctx, seg.Name)
		}
		for oi, opt := range seg.Options {
			v.validateOption(fmt.Sprintf("%s option %d", segCtx, oi), e, opt)
		}
	}
}

func (v *validator) validateOption(ctx string, e *Event, opt Option) {
	if opt.Condition != nil {
		v.checkCondition(ctx, *opt.Condition)
	}
	v.checkModifier(ctx, opt.Modifier)

	target := e
	if opt.JumpToEvent != "" {
		var ok bool
		target, ok = v.s.Event(opt.JumpToEvent)
		if !ok {
			v.addError("%s jumps to unknown event %q", ctx, opt.JumpToEvent)
			return
		}
	}
	if opt.JumpTo != "" {
		if _, ok := target.Segment(opt.JumpTo); !ok {
			v.addError("%s jumps to unknown segment %q in event %q", ctx, opt.JumpTo, target.Name)
		}
	}

	if opt.Avatar != nil {
		switch opt.Avatar.Kind {
		case AvatarMain, AvatarDeco, AvatarMainKeepingDeco:
		default:
			v.addError("%s has unknown avatar kind %q", ctx, opt.Avatar.Kind)
		}
	}
}

// checkLocation only applies when the catalog defines a map.
func (v *validator) checkLocation(ctx, name string) {
	if len(v.s.Locations) == 0 {
		return
	}
	if _, ok := v.s.Location(name); !ok {
		v.addError("%s references unknown location %q", ctx, name)
	}
}

func (v *validator) checkCondition(ctx string, c conditionals.Condition) {
	if d := conditionals.Depth(c); d > conditionals.MaxDepth {
		v.addError("%s nests %d levels deep (max %d)", ctx, d, conditionals.MaxDepth)
		return
	}
	v.walkCondition(ctx, c)
}

func (v *validator) walkCondition(ctx string, c conditionals.Condition) {
	switch c.Type {
	case "", conditionals.TypeTrue, conditionals.TypeFalse, conditionals.TypePlayerItem:
	case conditionals.TypeTime:
		if len(c.Days) == 0 {
			v.addError("%s: time condition needs at least one day", ctx)
		}
		for _, d := range c.Days {
			if !weekdays[strings.ToLower(d)] {
				v.addError("%s: %q is not a weekday", ctx, d)
			}
		}
		if c.End < c.Start {
			v.addError("%s: time window ends (%s) before it starts (%s)", ctx, c.End, c.Start)
		}
	case conditionals.TypeLocation:
		for _, l := range c.Locations {
			v.checkLocation(ctx, l)
		}
	case conditionals.TypePlayerAttribute:
		for name := range c.Attributes {
			if _, ok := v.s.Attribute(name); !ok {
				v.addError("%s: unknown attribute %q", ctx, name)
			}
		}
	case conditionals.TypeRandom:
		if c.Probability < 0 || c.Probability > 1 {
			v.addError("%s: probability %v is outside [0,1]", ctx, c.Probability)
		}
	case conditionals.TypeAnd, conditionals.TypeOr, conditionals.TypeXor:
		for _, sub := range c.Conditions {
			v.walkCondition(ctx, sub)
		}
	default:
		v.addError("%s: unknown condition type %q", ctx, c.Type)
	}
}

func (v *validator) checkModifier(ctx string, m Modifier) {
	if d := m.Depth(); d > conditionals.MaxDepth {
		v.addError("%s modifier nests %d levels deep (max %d)", ctx, d, conditionals.MaxDepth)
		return
	}
	v.walkModifier(ctx, m)
}

func (v *validator) walkModifier(ctx string, m Modifier) {
	switch m.Type {
	case "", ModifyNone:
	case ModifyAttribute:
		switch {
		case m.Attribute.IsZero():
			v.addError("%s: attribute modifier has no target", ctx)
		case m.Attribute.Index != nil:
			if *m.Attribute.Index >= len(v.s.Attributes) {
				v.addError("%s: attribute index %d out of range", ctx, *m.Attribute.Index)
			}
		default:
			if _, ok := v.s.Attribute(m.Attribute.Name); !ok {
				v.addError("%s: unknown attribute %q", ctx, m.Attribute.Name)
			}
		}
		switch m.Value.Op {
		case "", OpNone, OpAdd, OpMul, OpSqrt10:
		default:
			v.addError("%s: unknown attribute operation %q", ctx, m.Value.Op)
		}
	case ModifyItem:
		if m.Item == "" {
			v.addError("%s: item modifier has no item", ctx)
		}
		switch m.Modify.Op {
		case ItemAdd, ItemSub, ItemSetValue:
		default:
			v.addError("%s: unknown item operation %q", ctx, m.Modify.Op)
		}
		if m.Modify.Count < 0 {
			v.addError("%s: item count must not be negative", ctx)
		}
	case ModifyPosition:
		if m.Towards == "" {
			v.addError("%s: position modifier has no destination", ctx)
		} else {
			v.checkLocation(ctx, m.Towards)
		}
	case ModifyGroup, ModifyConditional:
		if m.When != nil {
			v.walkCondition(ctx, *m.When)
		}
		for _, sub := range m.Group {
			v.walkModifier(ctx, sub)
		}
	default:
		v.addError("%s: unknown modifier type %q", ctx, m.Type)
	}
}
