package frontend

import (
	"context"
	"errors"
	"fmt"
)

// ErrDisconnected is returned once the presentation layer has closed its
// command channel. It ends a session cleanly.
var ErrDisconnected = errors.New("presentation layer disconnected")

// Interrupt is returned from a blocking call when an administrative command
// arrives instead of a choice. It is not a failure: the caller applies
// Command and carries on.
type Interrupt struct {
	Command Command
}

func (i *Interrupt) Error() string {
	return fmt.Sprintf("interrupted by %s", i.Command)
}

// Boundary is the simulation's end of the two queues to the presentation
// layer. The simulation is the only sender of snapshots and the only
// receiver of commands; output is buffered in a pending Snapshot and sent
// on Flush or Choose.
type Boundary struct {
	out     chan<- Snapshot
	in      <-chan Command
	pending Snapshot
	// held is a choice read by Poll, kept for the next Choose.
	held *Command
}

// NewBoundary wraps the given queues.
func NewBoundary(out chan<- Snapshot, in <-chan Command) *Boundary {
	return &Boundary{out: out, in: in}
}

// Pipe returns a connected Boundary and Client.
func Pipe(buffer int) (*Boundary, *Client) {
	out := make(chan Snapshot, buffer)
	in := make(chan Command, buffer)
	return NewBoundary(out, in), &Client{snapshots: out, commands: in}
}

// Close ends the snapshot stream. Call it once the simulation has stopped
// sending; clients ranging over Snapshots then finish after the last one.
func (b *Boundary) Close() { close(b.out) }

// Pending exposes the unsent snapshot for the simulation to add to.
func (b *Boundary) Pending() *Snapshot { return &b.pending }

// Text appends narrative text.
func (b *Boundary) Text(text string) { b.pending.AppendText(text) }

// Error adds a recoverable, player-visible error line.
func (b *Boundary) Error(msg string) { b.pending.Errors = append(b.pending.Errors, msg) }

// Debug echoes a line to the debug area.
func (b *Boundary) Debug(msg string) { b.pending.Debug = append(b.pending.Debug, msg) }

// Flush sends the pending snapshot if there is anything in it.
func (b *Boundary) Flush(ctx context.Context) error {
	if b.pending.Empty() {
		return nil
	}
	snap := b.pending.Take()
	select {
	case b.out <- snap:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Choose shows options and blocks until the player picks one. An index that
// is out of range or names a disabled option is answered with an error line
// and the options are shown again. Administrative commands end the wait with
// an *Interrupt.
func (b *Boundary) Choose(ctx context.Context, options []Option, hideDisabled bool) (int, error) {
	for {
		b.pending.Options = options
		b.pending.HideDisabled = hideDisabled
		if err := b.Flush(ctx); err != nil {
			return 0, err
		}

		cmd, err := b.next(ctx)
		if err != nil {
			return 0, err
		}

		if cmd.Type != CmdChoice {
			return 0, &Interrupt{Command: cmd}
		}
		if cmd.Index >= 0 && cmd.Index < len(options) && options[cmd.Index].Enabled {
			return cmd.Index, nil
		}
		b.Error(fmt.Sprintf("option %d is not available", cmd.Index+1))
	}
}

func (b *Boundary) next(ctx context.Context) (Command, error) {
	if b.held != nil {
		cmd := *b.held
		b.held = nil
		return cmd, nil
	}
	select {
	case cmd, ok := <-b.in:
		if !ok {
			return Command{}, ErrDisconnected
		}
		return cmd, nil
	case <-ctx.Done():
		return Command{}, ctx.Err()
	}
}

// Poll returns a command that is already waiting, without blocking. A
// choice stays queued: it is returned again by later polls and answers the
// next Choose.
func (b *Boundary) Poll() (Command, bool, error) {
	if b.held != nil {
		return *b.held, true, nil
	}
	select {
	case cmd, ok := <-b.in:
		if !ok {
			return Command{}, false, ErrDisconnected
		}
		if cmd.Type == CmdChoice {
			b.held = &cmd
		}
		return cmd, true, nil
	default:
		return Command{}, false, nil
	}
}

// Client is the presentation layer's end of a Pipe.
type Client struct {
	snapshots <-chan Snapshot
	commands  chan<- Command
}

// Snapshots is the stream of output from the simulation.
func (c *Client) Snapshots() <-chan Snapshot { return c.snapshots }

// Send delivers a command to the simulation.
func (c *Client) Send(ctx context.Context, cmd Command) error {
	select {
	case c.commands <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects the presentation layer.
func (c *Client) Close() { close(c.commands) }
