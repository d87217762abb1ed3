package input

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
)

// fakeSource replays scripted keys and records pauses.
type fakeSource struct {
	mu     sync.Mutex
	keys   []tea.Key
	polls  int
	pauses int
	err    error
}

func (f *fakeSource) Poll(ctx context.Context, timeout time.Duration) (tea.Key, bool, error) {
	f.mu.Lock()
	f.polls++
	if f.err != nil {
		err := f.err
		f.mu.Unlock()
		return tea.Key{}, false, err
	}
	if len(f.keys) > 0 {
		k := f.keys[0]
		f.keys = f.keys[1:]
		f.mu.Unlock()
		return k, true, nil
	}
	f.mu.Unlock()
	select {
	case <-time.After(timeout):
	case <-ctx.Done():
		return tea.Key{}, false, ctx.Err()
	}
	return tea.Key{}, false, nil
}

func (f *fakeSource) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	return nil
}

func (f *fakeSource) push(keys ...tea.Key) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, keys...)
}

func (f *fakeSource) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func startPoller(t *testing.T, src KeySource, interval time.Duration) (*Poller, context.CancelFunc, <-chan error) {
	t.Helper()
	p := NewPoller(src, interval)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- p.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		for range p.Events() {
		}
	})
	return p, cancel, errc
}

func nextKey(t *testing.T, events <-chan Event) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatal("events closed before key arrived")
			}
			if ev.Kind == EventKey {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for key event")
		}
	}
}

// TestPollerDeliversKeysInOrder verifies FIFO key delivery.
func TestPollerDeliversKeysInOrder(t *testing.T) {
	src := &fakeSource{}
	src.push(tea.Key{Code: 'a', Text: "a"}, tea.Key{Code: 'b', Text: "b"}, tea.Key{Code: tea.KeyUp})
	p, _, _ := startPoller(t, src, 5*time.Millisecond)

	for _, want := range []string{"a", "b", "up"} {
		ev := nextKey(t, p.Events())
		if ev.Key.String() != want {
			t.Fatalf("expected %q, got %q", want, ev.Key.String())
		}
	}
}

// TestPollerEmitsTicks verifies ticks arrive without key input.
func TestPollerEmitsTicks(t *testing.T) {
	p, _, _ := startPoller(t, &fakeSource{}, 2*time.Millisecond)
	ticks := 0
	deadline := time.After(2 * time.Second)
	for ticks < 3 {
		select {
		case ev := <-p.Events():
			if ev.Kind == EventTick {
				ticks++
			}
		case <-deadline:
			t.Fatalf("expected 3 ticks, got %d", ticks)
		}
	}
}

// TestPollerSuspendStopsReads verifies no key reads happen while suspended.
func TestPollerSuspendStopsReads(t *testing.T) {
	src := &fakeSource{}
	p, _, _ := startPoller(t, src, 2*time.Millisecond)
	ctx := context.Background()

	if err := p.Suspend(ctx); err != nil {
		t.Fatalf("Suspend() error = %v", err)
	}
	src.mu.Lock()
	pauses := src.pauses
	src.mu.Unlock()
	if pauses != 1 {
		t.Fatalf("expected one pause, got %d", pauses)
	}
	before := src.pollCount()
	src.push(tea.Key{Code: 'x', Text: "x"})
	time.Sleep(30 * time.Millisecond)
	if after := src.pollCount(); after != before {
		t.Fatalf("expected no polls while suspended, got %d more", after-before)
	}

	if err := p.Resume(ctx); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	ev := nextKey(t, p.Events())
	if ev.Key.String() != "x" {
		t.Fatalf("expected queued key after resume, got %q", ev.Key.String())
	}
}

// TestPollerStopsOnSourceError verifies a failing source ends Run with the error.
func TestPollerStopsOnSourceError(t *testing.T) {
	boom := errors.New("boom")
	p, _, errc := startPoller(t, &fakeSource{err: boom}, time.Hour)
	for range p.Events() {
	}
	select {
	case err := <-errc:
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	if err := p.Suspend(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after exit, got %v", err)
	}
}

// TestPollerStopsOnCancel verifies cancellation closes the event stream.
func TestPollerStopsOnCancel(t *testing.T) {
	p, cancel, errc := startPoller(t, &fakeSource{}, 5*time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-p.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events stream stayed open after cancel")
		}
	}
}
