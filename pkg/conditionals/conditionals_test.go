package conditionals

import (
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockItem struct {
	value any
	count int
}

// mockGameStateView implements GameStateView for testing
type mockGameStateView struct {
	location   string
	now        time.Time
	attributes map[string]int
	items      map[string]mockItem
}

func (m *mockGameStateView) GetLocation() string { return m.location }
func (m *mockGameStateView) GetTime() time.Time  { return m.now }
func (m *mockGameStateView) GetAttribute(name string) (int, bool) {
	v, ok := m.attributes[name]
	return v, ok
}
func (m *mockGameStateView) GetItem(name string) (any, int, bool) {
	it, ok := m.items[name]
	return it.value, it.count, ok
}

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }

func TestEvaluate_Logical(t *testing.T) {
	view := &mockGameStateView{}

	tests := []struct {
		name     string
		cond     Condition
		expected bool
	}{
		{"zero value is true", Condition{}, true},
		{"true literal", True, true},
		{"false literal", False, false},
		{"empty and is true", All(), true},
		{"empty or is false", Any(), false},
		{"empty xor is false", OneOf(), false},
		{"and all true", All(True, True), true},
		{"and one false", All(True, False), false},
		{"or one true", Any(False, True), true},
		{"or none true", Any(False, False), false},
		{"xor one of three", OneOf(True, False, False), true},
		{"xor two of three", OneOf(True, True, False), false},
		{"xor three of three", OneOf(True, True, True), true},
		{"xor none of three", OneOf(False, False, False), false},
		{"nested", All(Any(False, True), OneOf(True)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.cond, view, Env{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvaluate_PlayerAttribute(t *testing.T) {
	view := &mockGameStateView{attributes: map[string]int{"mood": 50}}

	tests := []struct {
		name     string
		bounds   Bounds
		expected bool
	}{
		{"no bounds", Bounds{}, true},
		{"greater than satisfied", Bounds{GreaterThan: intPtr(49)}, true},
		{"greater than is exclusive", Bounds{GreaterThan: intPtr(50)}, false},
		{"less than satisfied", Bounds{LessThan: intPtr(51)}, true},
		{"less than is exclusive", Bounds{LessThan: intPtr(50)}, false},
		{"inside window", Bounds{GreaterThan: intPtr(10), LessThan: intPtr(60)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := Condition{Type: TypePlayerAttribute, Attributes: map[string]Bounds{"mood": tt.bounds}}
			got, err := Evaluate(cond, view, Env{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("unknown attribute is an error", func(t *testing.T) {
		cond := Condition{Type: TypePlayerAttribute, Attributes: map[string]Bounds{"luck": {}}}
		_, err := Evaluate(cond, view, Env{})
		assert.ErrorIs(t, err, ErrUnknownAttribute)
	})

	t.Run("error propagates through and", func(t *testing.T) {
		cond := All(True, Condition{Type: TypePlayerAttribute, Attributes: map[string]Bounds{"luck": {}}})
		_, err := Evaluate(cond, view, Env{})
		assert.ErrorIs(t, err, ErrUnknownAttribute)
	})
}

func TestEvaluate_PlayerItem(t *testing.T) {
	view := &mockGameStateView{items: map[string]mockItem{
		"coin":   {value: 1.0, count: 3},
		"letter": {value: map[string]any{"sealed": true}, count: 1},
	}}

	tests := []struct {
		name     string
		items    map[string]ItemCheck
		expected bool
	}{
		{"present item, no checks", map[string]ItemCheck{"coin": {}}, true},
		{"absent item, no checks", map[string]ItemCheck{"sword": {}}, true},
		{"required present and present", map[string]ItemCheck{"coin": {Exists: boolPtr(true)}}, true},
		{"required present but absent", map[string]ItemCheck{"sword": {Exists: boolPtr(true)}}, false},
		{"required absent and absent", map[string]ItemCheck{"sword": {Exists: boolPtr(false)}}, true},
		{"required absent but present", map[string]ItemCheck{"coin": {Exists: boolPtr(false)}}, false},
		{"count above", map[string]ItemCheck{"coin": {Count: Bounds{GreaterThan: intPtr(2)}}}, true},
		{"count bound exclusive", map[string]ItemCheck{"coin": {Count: Bounds{GreaterThan: intPtr(3)}}}, false},
		{"tag on record", map[string]ItemCheck{"letter": {Tag: "sealed"}}, true},
		{"missing tag on record", map[string]ItemCheck{"letter": {Tag: "torn"}}, false},
		{"tag on scalar value", map[string]ItemCheck{"coin": {Tag: "sealed"}}, false},
		{"tag on absent item", map[string]ItemCheck{"sword": {Tag: "sharp"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(Condition{Type: TypePlayerItem, Items: tt.items}, view, Env{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvaluate_TimeAndLocation(t *testing.T) {
	// 2024-01-02 was a Tuesday
	view := &mockGameStateView{
		location: "library",
		now:      time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC),
	}

	tests := []struct {
		name     string
		cond     Condition
		expected bool
	}{
		{"inside window", Condition{Type: TypeTime, Days: []string{"Tuesday"}, Start: 8 * 60, End: 10 * 60}, true},
		{"day match ignores case", Condition{Type: TypeTime, Days: []string{"TUESDAY"}, Start: 0, End: 23*60 + 59}, true},
		{"wrong day", Condition{Type: TypeTime, Days: []string{"Monday"}, Start: 0, End: 23*60 + 59}, false},
		{"before window", Condition{Type: TypeTime, Days: []string{"Tuesday"}, Start: 10 * 60, End: 11 * 60}, false},
		{"window edges inclusive", Condition{Type: TypeTime, Days: []string{"Tuesday"}, Start: 9*60 + 30, End: 9*60 + 30}, true},
		{"exact time point", Condition{Type: TypeTime, Days: []string{"Tuesday"}, Start: 0, End: 23 * 60, Times: []ClockTime{9*60 + 30}}, true},
		{"missed time point", Condition{Type: TypeTime, Days: []string{"Tuesday"}, Start: 0, End: 23 * 60, Times: []ClockTime{9 * 60}}, false},
		{"at location", Condition{Type: TypeLocation, Locations: []string{"dorm", "library"}}, true},
		{"elsewhere", Condition{Type: TypeLocation, Locations: []string{"dorm"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.cond, view, Env{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvaluate_Random(t *testing.T) {
	view := &mockGameStateView{}

	_, err := Evaluate(Condition{Type: TypeRandom, Probability: 0.5}, view, Env{})
	assert.ErrorIs(t, err, ErrNoRandomSource)

	always, err := Evaluate(Condition{Type: TypeRandom, Probability: 1}, view, Env{Rand: rand.New(rand.NewPCG(1, 2))})
	require.NoError(t, err)
	assert.True(t, always)

	never, err := Evaluate(Condition{Type: TypeRandom, Probability: 0}, view, Env{Rand: rand.New(rand.NewPCG(1, 2))})
	require.NoError(t, err)
	assert.False(t, never)

	// The same seed yields the same sequence of draws
	draw := func() []bool {
		env := Env{Rand: rand.New(rand.NewPCG(42, 7))}
		out := make([]bool, 16)
		for i := range out {
			out[i], _ = Evaluate(Condition{Type: TypeRandom, Probability: 0.5}, view, env)
		}
		return out
	}
	assert.Equal(t, draw(), draw())
}

func TestEvaluate_UnknownType(t *testing.T) {
	_, err := Evaluate(Condition{Type: "weather"}, &mockGameStateView{}, Env{})
	assert.ErrorIs(t, err, ErrUnknownConditionType)
}

func TestEvaluateOptional_NilIsTrue(t *testing.T) {
	ok, err := EvaluateOptional(nil, &mockGameStateView{}, Env{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 1, Depth(True))
	assert.Equal(t, 1, Depth(All()))
	assert.Equal(t, 3, Depth(All(Any(True), False)))
}

func TestCondition_UnmarshalJSON(t *testing.T) {
	raw := `{
		"type": "and",
		"conditions": [
			{"type": "time", "days": ["Monday"], "start": "08:00", "end": "17:30", "times": ["12:00"]},
			{"type": "player_attribute", "attributes": {"mood": {"greater_than": 10}}},
			{"type": "player_item", "items": {"key": {"exists": true, "count": {"less_than": 3}}}}
		]
	}`

	var c Condition
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	require.Len(t, c.Conditions, 3)

	assert.Equal(t, ClockTime(8*60), c.Conditions[0].Start)
	assert.Equal(t, ClockTime(17*60+30), c.Conditions[0].End)
	assert.Equal(t, []ClockTime{12 * 60}, c.Conditions[0].Times)
	assert.Equal(t, 10, *c.Conditions[1].Attributes["mood"].GreaterThan)
	assert.True(t, *c.Conditions[2].Items["key"].Exists)

	var bad Condition
	assert.Error(t, json.Unmarshal([]byte(`{"type":"time","start":"25:00"}`), &bad))
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{"00:00", 0, false},
		{"07:05", 7*60 + 5, false},
		{"23:59", 23*60 + 59, false},
		{"24:00", 0, true},
		{"7", 0, true},
		{"aa:bb", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClockTime(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}
