package scenario

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		in      string
		want    Trigger
		wantErr bool
	}{
		{in: "always", want: Always()},
		{in: "init", want: Init()},
		{in: "pre_init", want: Trigger{Kind: TriggerPreInit}},
		{in: "reached:lake", want: Reached("lake")},
		{in: "stay:town", want: Stay("town")},
		{in: "custom:bell", want: Custom("bell")},
		{in: "stone_skipped", want: Custom("stone_skipped")},
		{in: "  always ", want: Always()},
		{in: "", wantErr: true},
		{in: "reached:", wantErr: true},
		{in: "stay", wantErr: true},
		{in: "init:now", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTrigger(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrigger_StringRoundTrip(t *testing.T) {
	for _, tr := range []Trigger{Always(), Init(), Reached("lake"), Stay("town"), Custom("bell")} {
		parsed, err := ParseTrigger(tr.String())
		require.NoError(t, err)
		assert.Equal(t, tr, parsed)
	}
}

func TestTrigger_JSON(t *testing.T) {
	var bindings []TriggerBinding
	data := `[
		{"event": "a", "on": "reached:lake"},
		{"event": "b", "on": {"kind": "stay", "tag": "town"}},
		{"event": "c", "on": {"kind": "always"}}
	]`
	require.NoError(t, json.Unmarshal([]byte(data), &bindings))
	require.Len(t, bindings, 3)
	assert.Equal(t, Reached("lake"), bindings[0].On)
	assert.Equal(t, Stay("town"), bindings[1].On)
	assert.Equal(t, Always(), bindings[2].On)

	out, err := json.Marshal(bindings[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"event": "b", "on": "stay:town"}`, string(out))

	var bad Trigger
	assert.Error(t, json.Unmarshal([]byte(`{"kind": "reached"}`), &bad))
}
