package state

import (
	"encoding/json"
	"testing"

	"github.com/jwebster45206/narrative-engine/pkg/scenario"
)

func TestNewWorldState(t *testing.T) {
	scen := testScenario()
	ws, err := NewWorldState(scen)
	if err != nil {
		t.Fatalf("NewWorldState: %v", err)
	}

	if ws.Location != "town" {
		t.Errorf("expected start location town, got %q", ws.Location)
	}
	if !ws.Clock.Equal(scenario.DefaultStartTime) {
		t.Errorf("expected default start time, got %v", ws.Clock)
	}
	if ws.Scenario != "test.yaml" {
		t.Errorf("expected scenario test.yaml, got %q", ws.Scenario)
	}
	if len(ws.Attributes) != 3 || ws.Attributes[0].Name != "mood" || ws.Attributes[0].Value != 80 {
		t.Errorf("unexpected attributes %+v", ws.Attributes)
	}
	if _, count, ok := ws.GetItem("coins"); !ok || count != 3 {
		t.Errorf("expected 3 starting coins, got %d (found=%v)", count, ok)
	}
	if !ws.Triggers.Has(scenario.Init()) || len(ws.Triggers) != 1 {
		t.Errorf("expected only the init trigger, got %v", ws.Triggers.Sorted())
	}
	if ws.Active() {
		t.Error("new world state should be idle")
	}
}

func TestNewWorldState_BadStartTime(t *testing.T) {
	scen := testScenario()
	scen.Settings.StartTime = "noon"
	if _, err := NewWorldState(scen); err == nil {
		t.Error("expected an error for an unparseable start time")
	}
}

func TestAttributeStore_DefaultsClamped(t *testing.T) {
	store := NewAttributeStore([]scenario.AttributeDef{{Name: "x", Min: 5, Max: 10, Default: 0}})
	if v, _ := store.Get("x"); v != 5 {
		t.Errorf("expected default clamped to 5, got %d", v)
	}
	if store.Resolve(scenario.AttrIndex(-1)) != -1 || store.Resolve(scenario.AttrName("y")) != -1 {
		t.Error("expected unresolvable references to return -1")
	}
}

func TestWorldState_CursorAndClock(t *testing.T) {
	ws, _ := NewWorldState(testScenario())
	ws.Enter("intro", "second", true)
	if !ws.Active() || !ws.Stuck || ws.Cursor.Segment != "second" {
		t.Errorf("unexpected cursor %+v stuck=%v", ws.Cursor, ws.Stuck)
	}
	ws.Leave()
	if ws.Active() || ws.Stuck {
		t.Error("expected idle after Leave")
	}

	start := ws.Clock
	ws.Advance(90)
	if got := ws.Clock.Sub(start).Minutes(); got != 90 {
		t.Errorf("expected clock to advance 90 minutes, got %v", got)
	}
}

func TestWorldState_RoundTrip(t *testing.T) {
	ws, _ := NewWorldState(testScenario())
	ws.Attributes[1].Value = 7
	ws.Items["note"] = Item{Value: "meet at dawn", Count: 1}
	ws.Location = "lake"
	ws.AddTrigger(scenario.Reached("lake"))
	ws.AddTrigger(scenario.Custom("bell"))
	ws.Enter("intro", "second", false)

	data, err := json.Marshal(ws)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back WorldState
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.ID != ws.ID {
		t.Errorf("id = %v, want %v", back.ID, ws.ID)
	}
	if len(back.Attributes) != len(ws.Attributes) {
		t.Fatalf("attributes = %+v, want %+v", back.Attributes, ws.Attributes)
	}
	for i := range ws.Attributes {
		if back.Attributes[i] != ws.Attributes[i] {
			t.Errorf("attribute %d = %+v, want %+v", i, back.Attributes[i], ws.Attributes[i])
		}
	}
	if back.Location != "lake" || !back.Clock.Equal(ws.Clock) {
		t.Errorf("location/clock = %q/%v", back.Location, back.Clock)
	}
	for _, name := range []string{"coins", "note", "lantern"} {
		wantValue, wantCount, _ := ws.GetItem(name)
		gotValue, gotCount, ok := back.GetItem(name)
		if !ok || gotCount != wantCount || !sameValue(gotValue, wantValue) {
			t.Errorf("item %s = (%v, %d), want (%v, %d)", name, gotValue, gotCount, wantValue, wantCount)
		}
	}
	if len(back.Triggers) != len(ws.Triggers) {
		t.Errorf("triggers = %v, want %v", back.Triggers.Sorted(), ws.Triggers.Sorted())
	}
	for tr := range ws.Triggers {
		if !back.Triggers.Has(tr) {
			t.Errorf("missing trigger %s after round trip", tr)
		}
	}
	if back.Cursor == nil || *back.Cursor != *ws.Cursor {
		t.Errorf("cursor = %+v, want %+v", back.Cursor, ws.Cursor)
	}
}

func TestTriggerSet_JSON(t *testing.T) {
	set := NewTriggerSet(scenario.Stay("town"), scenario.Always(), scenario.Init())
	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["always","init","stay:town"]` {
		t.Errorf("unexpected encoding %s", data)
	}

	var empty WorldState
	if err := json.Unmarshal([]byte(`{"location":"x"}`), &empty); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	empty.AddTrigger(scenario.Always())
	if !empty.Triggers.Has(scenario.Always()) {
		t.Error("AddTrigger should work on a state decoded without triggers")
	}
}

func TestWorldState_StatusLines(t *testing.T) {
	scen := testScenario()

	tests := []struct {
		name   string
		mood   int
		energy int
		secret int
		want   []string
	}{
		{name: "nothing to report", mood: 50, energy: 5, secret: 3, want: nil},
		{name: "over max", mood: 95, energy: 5, secret: 3, want: []string{"Elated."}},
		{name: "two lines", mood: 10, energy: 1, secret: 3, want: []string{"Gloomy.", "Tired."}},
		{name: "invisible skipped", mood: 50, energy: 5, secret: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, _ := NewWorldState(scen)
			ws.Attributes[0].Value = tt.mood
			ws.Attributes[1].Value = tt.energy
			ws.Attributes[2].Value = tt.secret

			got := ws.StatusLines(scen)
			if len(got) != len(tt.want) {
				t.Fatalf("StatusLines() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWorldState_StatusLinesCapped(t *testing.T) {
	scen := testScenario()
	scen.Attributes = append(scen.Attributes, scenario.AttributeDef{Name: "hunger", Min: 0, Max: 10, UnderMin: 5, UnderMinDesc: "Hungry."})
	ws, _ := NewWorldState(scen)
	ws.Attributes[0].Value = 0
	ws.Attributes[1].Value = 0

	if got := ws.StatusLines(scen); len(got) != MaxStatusLines {
		t.Errorf("expected %d lines, got %v", MaxStatusLines, got)
	}
}

func TestWorldState_AttributeDisplays(t *testing.T) {
	scen := testScenario()
	scen.Attributes = append(scen.Attributes, scenario.AttributeDef{Name: "night_owl", Min: 0, Max: 3})
	ws, _ := NewWorldState(scen)

	got := ws.AttributeDisplays(scen)
	want := []AttributeDisplay{
		{Label: "Mood", Value: 80, Max: 100},
		{Label: "Energy", Value: 5, Max: 10},
		{Label: "Night Owl", Value: 0, Max: 3},
	}
	if len(got) != len(want) {
		t.Fatalf("AttributeDisplays() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("display %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
