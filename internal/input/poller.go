package input

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTickInterval is the tick cadence used when none is configured.
const DefaultTickInterval = 20 * time.Millisecond

// ErrStopped reports a control request sent after the poller exited.
var ErrStopped = errors.New("poller stopped")

// Poller reads keys from a KeySource and emits ticks at a fixed interval.
// Suspension is requested only through its control channel.
type Poller struct {
	src      KeySource
	interval time.Duration
	now      func() time.Time

	control chan bool
	acks    chan struct{}
	in      chan Event
	out     chan Event
	done    chan struct{}
}

// NewPoller constructs a poller. A non-positive interval uses
// DefaultTickInterval.
func NewPoller(src KeySource, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Poller{
		src:      src,
		interval: interval,
		now:      time.Now,
		control:  make(chan bool),
		acks:     make(chan struct{}),
		in:       make(chan Event, 16),
		out:      make(chan Event),
		done:     make(chan struct{}),
	}
}

// Events returns the consumer side of the queue. It is closed after Run
// returns.
func (p *Poller) Events() <-chan Event {
	return p.out
}

// Suspend stops key reads and waits until the key source is paused.
func (p *Poller) Suspend(ctx context.Context) error {
	return p.send(ctx, true)
}

// Resume restarts key reads.
func (p *Poller) Resume(ctx context.Context) error {
	return p.send(ctx, false)
}

func (p *Poller) send(ctx context.Context, suspend bool) error {
	select {
	case p.control <- suspend:
	case <-p.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-p.acks:
		return nil
	case <-p.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run polls until ctx ends or the key source fails. It must be called once.
func (p *Poller) Run(ctx context.Context) error {
	fwdCtx, cancel := context.WithCancel(ctx)
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		forward(fwdCtx, p.in, p.out)
	}()
	defer func() {
		close(p.done)
		close(p.in)
		<-forwarded
		cancel()
	}()

	suspended := false
	lastTick := p.now()
	for {
		if ctx.Err() != nil {
			return nil
		}
		if suspended {
			select {
			case s := <-p.control:
				if err := p.apply(ctx, s, &suspended); err != nil {
					return err
				}
				lastTick = p.now()
			case <-ctx.Done():
				return nil
			}
			continue
		}

		select {
		case s := <-p.control:
			if err := p.apply(ctx, s, &suspended); err != nil {
				return err
			}
			continue
		default:
		}

		remaining := p.interval - p.now().Sub(lastTick)
		if remaining <= 0 {
			lastTick = p.now()
			p.enqueue(ctx, Event{Kind: EventTick, At: lastTick})
			continue
		}
		k, ok, err := p.src.Poll(ctx, remaining)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("poll key source: %w", err)
		}
		if ok {
			p.enqueue(ctx, Event{Kind: EventKey, Key: k, At: p.now()})
		}
	}
}

func (p *Poller) enqueue(ctx context.Context, ev Event) {
	select {
	case p.in <- ev:
	case <-ctx.Done():
	}
}

func (p *Poller) apply(ctx context.Context, suspend bool, suspended *bool) error {
	var err error
	if suspend && !*suspended {
		if perr := p.src.Pause(); perr != nil {
			err = fmt.Errorf("pause key source: %w", perr)
		}
	}
	*suspended = suspend
	select {
	case p.acks <- struct{}{}:
	case <-ctx.Done():
	}
	return err
}
