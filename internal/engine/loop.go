package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/evanschultz/koni/internal/input"
)

// ErrInputClosed reports that the event stream ended before the user quit.
var ErrInputClosed = errors.New("input closed")

// Loop is the foreground consumer of input events.
type Loop struct {
	proc   *Processor
	render Renderer
	events <-chan input.Event
}

// NewLoop constructs a loop over proc that draws through render.
func NewLoop(proc *Processor, render Renderer, events <-chan input.Event) *Loop {
	return &Loop{proc: proc, render: render, events: events}
}

// Run renders, then waits for the next event and applies it, until the
// session asks to exit or ctx ends. Terminal cleanup is left to the caller.
func (l *Loop) Run(ctx context.Context) error {
	for {
		state := l.proc.State()
		if err := l.render.Render(state); err != nil {
			return fmt.Errorf("render frame: %w", err)
		}
		if state.ExitRequested {
			return nil
		}

		var ev input.Event
		select {
		case <-ctx.Done():
			return nil
		case next, ok := <-l.events:
			if !ok {
				return ErrInputClosed
			}
			ev = next
		}

		// A key that arrived while the editor was pending belongs to no view.
		wasEditing := l.proc.state.EditorActive
		if wasEditing {
			if err := l.proc.RunEditor(ctx); err != nil {
				l.proc.log.Error("editor sub-session ended with error", "err", err)
			}
			if inv, ok := l.render.(interface{ Invalidate() }); ok {
				inv.Invalidate()
			}
		}
		if wasEditing && ev.Kind == input.EventKey {
			l.proc.log.Debug("key dropped during editor session", "key", ev.Key.String())
			continue
		}
		if err := l.proc.Handle(ctx, ev); err != nil {
			l.proc.log.Warn("command failed", "err", err)
		}
	}
}
