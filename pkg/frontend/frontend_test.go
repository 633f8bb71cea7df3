package frontend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jwebster45206/narrative-engine/pkg/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Merge(t *testing.T) {
	var s Snapshot
	s.Merge(Snapshot{Main: "first", Status: []string{"old"}, Avatars: []scenario.AvatarSet{{Kind: scenario.AvatarMain, Key: "a"}}})
	s.Merge(Snapshot{
		Main:       "second",
		Options:    []Option{{Text: "go", Enabled: true}},
		Status:     []string{"new"},
		Attributes: []AttributeDisplay{{Name: "Mood", Value: 5, Max: 10}},
		Avatars:    []scenario.AvatarSet{{Kind: scenario.AvatarDeco, Key: "b"}},
		Errors:     []string{"oops"},
	})

	assert.Equal(t, "first\nsecond", s.Main)
	assert.Equal(t, []Option{{Text: "go", Enabled: true}}, s.Options)
	assert.Equal(t, []string{"new"}, s.Status)
	assert.Len(t, s.Attributes, 1)
	assert.Len(t, s.Avatars, 2)
	assert.Equal(t, []string{"oops"}, s.Errors)

	taken := s.Take()
	assert.Equal(t, "first\nsecond", taken.Main)
	assert.True(t, s.Empty())
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in      string
		want    Command
		wantErr bool
	}{
		{in: "1", want: Choice(0)},
		{in: " 3 ", want: Choice(2)},
		{in: ":reload default", want: Reload(DataSource{Kind: SourceDefault})},
		{in: ":reload stories/town.yaml", want: Reload(DataSource{Kind: SourcePath, Path: "stories/town.yaml"})},
		{in: ":set mood 40", want: SetAttribute("mood", 40)},
		{in: ":S mood -5", want: SetAttribute("mood", -5)},
		{in: "", wantErr: true},
		{in: "0", wantErr: true},
		{in: "look", wantErr: true},
		{in: ":", wantErr: true},
		{in: ":reload", wantErr: true},
		{in: ":set mood lots", wantErr: true},
		{in: ":dance", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCommand(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBoundary_Choose(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	b, client := Pipe(4)
	b.Text("Pick one.")
	options := []Option{{Text: "a", Enabled: true}, {Text: "b", Enabled: false}, {Text: "c", Enabled: true}}

	require.NoError(t, client.Send(ctx, Choice(1))) // disabled
	require.NoError(t, client.Send(ctx, Choice(7))) // out of range
	require.NoError(t, client.Send(ctx, Choice(2)))

	got, err := b.Choose(ctx, options, true)
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	first := <-client.Snapshots()
	assert.Equal(t, "Pick one.", first.Main)
	assert.Equal(t, options, first.Options)
	assert.True(t, first.HideDisabled)

	second := <-client.Snapshots()
	assert.Equal(t, []string{"option 2 is not available"}, second.Errors)
	third := <-client.Snapshots()
	assert.Equal(t, []string{"option 8 is not available"}, third.Errors)
}

func TestBoundary_Interrupt(t *testing.T) {
	ctx := context.Background()
	b, client := Pipe(2)
	require.NoError(t, client.Send(ctx, SetAttribute("mood", 10)))

	_, err := b.Choose(ctx, []Option{{Text: "a", Enabled: true}}, false)
	var interrupt *Interrupt
	require.True(t, errors.As(err, &interrupt))
	assert.Equal(t, SetAttribute("mood", 10), interrupt.Command)
}

func TestBoundary_Disconnect(t *testing.T) {
	b, client := Pipe(1)
	client.Close()

	_, err := b.Choose(context.Background(), []Option{{Text: "a", Enabled: true}}, false)
	assert.ErrorIs(t, err, ErrDisconnected)

	_, _, err = b.Poll()
	assert.ErrorIs(t, err, ErrDisconnected)
}

func TestBoundary_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b, _ := Pipe(1)
	cancel()

	_, err := b.Choose(ctx, []Option{{Text: "a", Enabled: true}}, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBoundary_Poll(t *testing.T) {
	b, client := Pipe(1)
	_, ok, err := b.Poll()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.Send(context.Background(), Reload(DataSource{Kind: SourceRaw, Raw: "name: x"})))
	cmd, ok, err := b.Poll()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, CmdReload, cmd.Type)
	assert.Equal(t, "inline catalog (7 bytes)", cmd.Source.String())
}

func TestBoundary_PollKeepsChoice(t *testing.T) {
	ctx := context.Background()
	b, client := Pipe(2)
	require.NoError(t, client.Send(ctx, Choice(1)))
	require.NoError(t, client.Send(ctx, Choice(0)))

	cmd, ok, err := b.Poll()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Choice(1), cmd)

	cmd, ok, err = b.Poll()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Choice(1), cmd, "a choice is not consumed by polling")

	options := []Option{{Text: "a", Enabled: true}, {Text: "b", Enabled: true}}
	idx, err := b.Choose(ctx, options, false)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = b.Choose(ctx, options, false)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}
