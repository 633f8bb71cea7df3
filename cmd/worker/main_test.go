package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/narrative-engine/pkg/frontend"
	"github.com/jwebster45206/narrative-engine/pkg/scenario"
)

func TestWriteSnapshot(t *testing.T) {
	var out bytes.Buffer
	writeSnapshot(&out, frontend.Snapshot{
		Main:    "The hermit looks up.",
		Errors:  []string{"the way is blocked"},
		Avatars: []scenario.AvatarSet{{Kind: scenario.AvatarMain, Key: "hermit"}},
		Status:  []string{"You are tired."},
		Options: []frontend.Option{
			{Text: "Offer a coin", Enabled: true},
			{Text: "Show the lantern", Enabled: false},
		},
	})

	expected := strings.Join([]string{
		"The hermit looks up.",
		"! the way is blocked",
		"[avatar main hermit]",
		"~ You are tired.",
		"  1. Offer a coin",
		"  2. (Show the lantern)",
		"",
	}, "\n")
	assert.Equal(t, expected, out.String())

	out.Reset()
	writeSnapshot(&out, frontend.Snapshot{
		HideDisabled: true,
		Options:      []frontend.Option{{Text: "a", Enabled: false}, {Text: "b", Enabled: true}},
	})
	assert.Equal(t, "  2. b\n", out.String())
}

func TestReadCommands(t *testing.T) {
	boundary, client := frontend.Pipe(8)
	var out bytes.Buffer

	readCommands(strings.NewReader("2\n\nnope\n:set mood 7\n"), &out, client)
	assert.Contains(t, out.String(), "not an option number")

	ctx := context.Background()
	idx, err := boundary.Choose(ctx, []frontend.Option{{Text: "a", Enabled: true}, {Text: "b", Enabled: true}}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	cmd, ok, err := boundary.Poll()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, frontend.SetAttribute("mood", 7), cmd)

	// EOF disconnects.
	_, _, err = boundary.Poll()
	assert.ErrorIs(t, err, frontend.ErrDisconnected)
}

func TestPrintSnapshots_DrainsAfterClose(t *testing.T) {
	ctx := context.Background()
	boundary, client := frontend.Pipe(4)
	boundary.Text("First.")
	require.NoError(t, boundary.Flush(ctx))
	boundary.Text("Last.")
	require.NoError(t, boundary.Flush(ctx))
	boundary.Close()

	var out bytes.Buffer
	printSnapshots(&out, client.Snapshots())
	assert.Equal(t, "First.\nLast.\n", out.String())
}
