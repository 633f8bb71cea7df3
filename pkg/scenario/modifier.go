package scenario

import (
	"encoding/json"
	"fmt"

	"github.com/jwebster45206/narrative-engine/pkg/conditionals"
)

// ModifierType selects which fields of a Modifier are meaningful.
type ModifierType string

const (
	ModifyNone        ModifierType = "none"
	ModifyAttribute   ModifierType = "attribute"
	ModifyItem        ModifierType = "item"
	ModifyPosition    ModifierType = "position"
	ModifyGroup       ModifierType = "group"
	ModifyConditional ModifierType = "conditional"
)

// Modifier is a state mutation applied when an option is chosen. Like
// conditionals.Condition it is a tagged union keyed by Type; the zero value
// is a no-op.
type Modifier struct {
	Type ModifierType `json:"type,omitempty"`

	// attribute
	Attribute AttributeRef `json:"attr,omitzero"`
	Value     ValueOp      `json:"val,omitzero"`

	// item
	Item   string `json:"item,omitempty"`
	Modify ItemOp `json:"modify,omitzero"`

	// position
	Towards string `json:"towards,omitempty"`
	Check   bool   `json:"check,omitempty"` // true: travel along a map connection

	// group / conditional
	Group []Modifier              `json:"group,omitempty"`
	When  *conditionals.Condition `json:"when,omitempty"` // conditional only; nil holds
}

// Depth returns the nesting depth of m. Leaves have depth 1, and a
// conditional counts the depth of its condition as well.
func (m Modifier) Depth() int {
	deepest := 0
	if m.When != nil {
		deepest = conditionals.Depth(*m.When)
	}
	for _, sub := range m.Group {
		if d := sub.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// AttributeRef addresses an attribute by name or by its position in the store.
// In catalogs it is written either as a string or as a number.
type AttributeRef struct {
	Name  string
	Index *int
}

// AttrName addresses an attribute by name.
func AttrName(name string) AttributeRef { return AttributeRef{Name: name} }

// AttrIndex addresses an attribute by position.
func AttrIndex(i int) AttributeRef { return AttributeRef{Index: &i} }

// IsZero reports whether the reference addresses nothing.
func (r AttributeRef) IsZero() bool { return r.Name == "" && r.Index == nil }

func (r AttributeRef) String() string {
	if r.Index != nil {
		return fmt.Sprintf("#%d", *r.Index)
	}
	return r.Name
}

func (r AttributeRef) MarshalJSON() ([]byte, error) {
	if r.Index != nil {
		return json.Marshal(*r.Index)
	}
	return json.Marshal(r.Name)
}

func (r *AttributeRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*r = AttrName(name)
		return nil
	}
	var idx int
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("attribute must be a name or an index: %s", string(data))
	}
	if idx < 0 {
		return fmt.Errorf("attribute index must not be negative: %d", idx)
	}
	*r = AttrIndex(idx)
	return nil
}

// ValueOpKind is the arithmetic applied to an attribute.
type ValueOpKind string

const (
	OpNone   ValueOpKind = "none"
	OpAdd    ValueOpKind = "add"
	OpMul    ValueOpKind = "mul"
	OpSqrt10 ValueOpKind = "sqrt10" // floor(sqrt(v) * 10)
)

// ValueOp is an attribute operation. By is the delta for add and the factor for mul.
type ValueOp struct {
	Op ValueOpKind `json:"op,omitempty"`
	By float64     `json:"by,omitempty"`
}

// ItemOpKind is the change applied to an inventory entry.
type ItemOpKind string

const (
	ItemAdd      ItemOpKind = "add"
	ItemSub      ItemOpKind = "sub"
	ItemSetValue ItemOpKind = "set_value"
)

// ItemOp changes an inventory entry. Value is optional for add (replaces the
// stored value) and sub (only subtract when the stored value equals it).
type ItemOp struct {
	Op    ItemOpKind `json:"op,omitempty"`
	Count int        `json:"count,omitempty"`
	Value any        `json:"value,omitempty"`
}
