// Package input reads terminal keys on a background goroutine and delivers
// them, interleaved with periodic ticks, to the foreground loop.
package input

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
)

// EventKind distinguishes key presses from ticks.
type EventKind int

// EventKind values.
const (
	EventTick EventKind = iota
	EventKey
)

// Event is one queued input occurrence.
type Event struct {
	Kind EventKind
	Key  tea.Key
	At   time.Time
}

// KeySource is a blocking key reader that can be paused.
type KeySource interface {
	// Poll waits up to timeout for one key. It reports false when no key
	// arrived in time.
	Poll(ctx context.Context, timeout time.Duration) (tea.Key, bool, error)
	// Pause stops any read in flight. The next Poll resumes reading.
	Pause() error
}
