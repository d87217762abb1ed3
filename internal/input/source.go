package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/muesli/cancelreader"
)

// TerminalKeySource decodes keys from a terminal input stream. Reads happen
// on a goroutine started by the first Poll and cancelled by Pause, so no
// read is outstanding while another process owns the terminal.
type TerminalKeySource struct {
	in io.Reader

	mu     sync.Mutex
	reader cancelreader.CancelReader
	stop   chan struct{}
	done   chan struct{}
	keys   chan tea.Key
	errs   chan error
}

// NewTerminalKeySource constructs a key source over in, usually os.Stdin.
func NewTerminalKeySource(in io.Reader) *TerminalKeySource {
	return &TerminalKeySource{in: in}
}

// Poll waits up to timeout for one decoded key.
func (s *TerminalKeySource) Poll(ctx context.Context, timeout time.Duration) (tea.Key, bool, error) {
	keys, errs, err := s.start()
	if err != nil {
		return tea.Key{}, false, err
	}
	select {
	case k := <-keys:
		return k, true, nil
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case k := <-keys:
		return k, true, nil
	case err := <-errs:
		// Keys decoded before the failure are still delivered first.
		select {
		case k := <-keys:
			s.errs <- err
			return k, true, nil
		default:
		}
		return tea.Key{}, false, err
	case <-timer.C:
		return tea.Key{}, false, nil
	case <-ctx.Done():
		return tea.Key{}, false, ctx.Err()
	}
}

// Pause cancels the in-flight read and waits for the reader goroutine to
// exit. Keys decoded before the cancel stay queued for the next Poll.
func (s *TerminalKeySource) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reader == nil {
		return nil
	}
	close(s.stop)
	if s.reader.Cancel() {
		<-s.done
	}
	err := s.reader.Close()
	s.reader = nil
	if err != nil {
		return fmt.Errorf("close terminal reader: %w", err)
	}
	return nil
}

func (s *TerminalKeySource) start() (<-chan tea.Key, <-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys == nil {
		s.keys = make(chan tea.Key, 64)
		s.errs = make(chan error, 1)
	}
	if s.reader != nil {
		return s.keys, s.errs, nil
	}
	r, err := cancelreader.NewReader(s.in)
	if err != nil {
		return nil, nil, fmt.Errorf("open terminal reader: %w", err)
	}
	s.reader = r
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.readLoop(r, s.keys, s.errs, s.stop, s.done)
	return s.keys, s.errs, nil
}

func (s *TerminalKeySource) readLoop(r io.Reader, keys chan<- tea.Key, errs chan<- error, stop, done chan struct{}) {
	defer close(done)
	buf := make([]byte, 256)
	var pending []byte
	for {
		n, err := r.Read(buf)
		decoded, rest := DecodeStream(append(pending, buf[:n]...))
		if len(rest) > maxPending {
			rest = nil
		}
		pending = append(pending[:0:0], rest...)
		for _, k := range decoded {
			select {
			case keys <- k:
			case <-stop:
				return
			}
		}
		if err != nil {
			if errors.Is(err, cancelreader.ErrCanceled) {
				return
			}
			select {
			case errs <- fmt.Errorf("read terminal: %w", err):
			case <-stop:
			}
			return
		}
	}
}
