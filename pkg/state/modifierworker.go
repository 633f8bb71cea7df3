package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/jwebster45206/narrative-engine/pkg/conditionals"
	"github.com/jwebster45206/narrative-engine/pkg/scenario"
)

// ErrUnknownModifierType is returned for a modifier Type the worker does not know.
var ErrUnknownModifierType = errors.New("unknown modifier type")

// ModifierWorker applies modifiers to a world state. It is the only writer
// of attributes, items and position.
type ModifierWorker struct {
	ws       *WorldState
	scenario *scenario.Scenario
	logger   *slog.Logger
	env      conditionals.Env
}

// NewModifierWorker creates a worker for applying modifiers from scen to ws.
func NewModifierWorker(ws *WorldState, scen *scenario.Scenario, logger *slog.Logger) *ModifierWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModifierWorker{
		ws:       ws,
		scenario: scen,
		logger:   logger,
	}
}

// WithEnv sets the collaborators used by conditional modifiers and guarded travel.
// Returns the ModifierWorker for method chaining
func (mw *ModifierWorker) WithEnv(env conditionals.Env) *ModifierWorker {
	mw.env = env
	return mw
}

// Apply applies m. Groups stop at the first failing member and return its error;
// members already applied stay applied.
func (mw *ModifierWorker) Apply(m scenario.Modifier) error {
	switch m.Type {
	case "", scenario.ModifyNone:
		return nil

	case scenario.ModifyAttribute:
		return mw.applyAttribute(m.Attribute, m.Value)

	case scenario.ModifyItem:
		mw.applyItem(m.Item, m.Modify)
		return nil

	case scenario.ModifyPosition:
		if m.Check {
			return mw.Travel(m.Towards)
		}
		mw.relocate(m.Towards)
		return nil

	case scenario.ModifyGroup:
		return mw.applyAll(m.Group)

	case scenario.ModifyConditional:
		ok, err := conditionals.EvaluateOptional(m.When, mw.ws, mw.env)
		if err != nil {
			return fmt.Errorf("failed to evaluate modifier condition: %w", err)
		}
		if !ok {
			return nil
		}
		return mw.applyAll(m.Group)
	}

	return fmt.Errorf("%w: %q", ErrUnknownModifierType, m.Type)
}

func (mw *ModifierWorker) applyAll(group []scenario.Modifier) error {
	for i, sub := range group {
		if err := mw.Apply(sub); err != nil {
			return fmt.Errorf("modifier %d of group: %w", i, err)
		}
	}
	return nil
}

func (mw *ModifierWorker) applyAttribute(ref scenario.AttributeRef, op scenario.ValueOp) error {
	i := mw.ws.Attributes.Resolve(ref)
	if i < 0 {
		return fmt.Errorf("%w: %s", conditionals.ErrUnknownAttribute, ref)
	}

	current := float64(mw.ws.Attributes[i].Value)
	next := current
	switch op.Op {
	case "", scenario.OpNone:
	case scenario.OpAdd:
		next = current + math.Trunc(op.By)
	case scenario.OpMul:
		next = math.Trunc(current * op.By)
	case scenario.OpSqrt10:
		// negative values have no root; treat them as zero
		next = math.Trunc(math.Sqrt(max(current, 0)) * 10)
	default:
		return fmt.Errorf("unknown attribute operation %q", op.Op)
	}

	mw.setAttribute(i, mw.saturate(i, next))
	return nil
}

// saturate converts a computed value to an int within the attribute's
// bounds. The clamp happens before the conversion so huge operands land on
// the nearest bound.
func (mw *ModifierWorker) saturate(i int, v float64) int {
	lo, hi := float64(-1<<53), float64(1<<53)
	if def, ok := mw.scenario.Attribute(mw.ws.Attributes[i].Name); ok {
		lo, hi = float64(def.Min), float64(def.Max)
	}
	if math.IsNaN(v) {
		return mw.ws.Attributes[i].Value
	}
	return int(math.Max(lo, math.Min(hi, v)))
}

// SetAttribute overrides the named attribute, clamped to its definition.
func (mw *ModifierWorker) SetAttribute(name string, value int) error {
	i := mw.ws.Attributes.Resolve(scenario.AttrName(name))
	if i < 0 {
		return fmt.Errorf("%w: %q", conditionals.ErrUnknownAttribute, name)
	}
	mw.setAttribute(i, value)
	return nil
}

func (mw *ModifierWorker) setAttribute(i, value int) {
	av := &mw.ws.Attributes[i]
	if def, ok := mw.scenario.Attribute(av.Name); ok {
		value = def.Clamp(value)
	}
	if value != av.Value {
		mw.logger.Debug("Attribute changed", "attribute", av.Name, "from", av.Value, "to", value)
	}
	av.Value = value
}

// applyItem changes an existing inventory entry. Modifiers for items the
// player does not hold do nothing.
func (mw *ModifierWorker) applyItem(name string, op scenario.ItemOp) {
	item, ok := mw.ws.Items[name]
	if !ok {
		mw.logger.Debug("Item modifier skipped, item not held", "item", name, "op", op.Op)
		return
	}

	switch op.Op {
	case scenario.ItemAdd:
		item.Count += op.Count
		if op.Value != nil {
			item.Value = op.Value
		}
	case scenario.ItemSub:
		if op.Value != nil && !sameValue(op.Value, item.Value) {
			return
		}
		item.Count = max(item.Count-op.Count, 0)
	case scenario.ItemSetValue:
		item.Value = op.Value
	default:
		mw.logger.Warn("Unknown item operation", "item", name, "op", op.Op)
		return
	}

	if item.Count == 0 {
		delete(mw.ws.Items, name)
		mw.logger.Debug("Item removed", "item", name)
		return
	}
	mw.ws.Items[name] = item
}

func (mw *ModifierWorker) relocate(to string) {
	if mw.ws.Location != to {
		mw.logger.Info("Location changed", "from", mw.ws.Location, "to", to)
	}
	mw.ws.Location = to
	mw.ws.AddTrigger(scenario.Reached(to))
}

// sameValue compares item payloads by their JSON encoding, so a value read
// back from a save (float64 numbers) still matches the catalog's.
func sameValue(a, b any) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}
