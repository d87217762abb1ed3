// Package terminal owns the user's terminal and hands it to external
// editors.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

// Session switches a terminal into raw mode on the alternate screen and
// restores it on Release.
type Session struct {
	fd  int
	out io.Writer

	mu       sync.Mutex
	saved    *term.State
	acquired bool
}

// NewSession constructs a session over the input descriptor fd, writing
// control sequences to out.
func NewSession(fd uintptr, out io.Writer) *Session {
	if out == nil {
		out = io.Discard
	}
	return &Session{fd: int(fd), out: out}
}

// IsTerminal reports whether the input descriptor is a terminal.
func (s *Session) IsTerminal() bool {
	return term.IsTerminal(s.fd)
}

// Acquire enters raw mode and the alternate screen. It is a no-op when
// already acquired.
func (s *Session) Acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquired {
		return nil
	}
	if term.IsTerminal(s.fd) {
		st, err := term.MakeRaw(s.fd)
		if err != nil {
			return fmt.Errorf("enter raw mode: %w", err)
		}
		s.saved = st
	}
	if _, err := io.WriteString(s.out, ansi.SetModeAltScreenSaveCursor+ansi.HideCursor+ansi.EraseEntireScreen+ansi.CursorHomePosition); err != nil {
		return errors.Join(fmt.Errorf("enter alternate screen: %w", err), s.restore())
	}
	s.acquired = true
	return nil
}

// Release leaves the alternate screen and restores the saved mode. It is a
// no-op when not acquired.
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acquired {
		return nil
	}
	s.acquired = false
	_, werr := io.WriteString(s.out, ansi.ShowCursor+ansi.ResetModeAltScreenSaveCursor)
	if werr != nil {
		werr = fmt.Errorf("leave alternate screen: %w", werr)
	}
	return errors.Join(werr, s.restore())
}

// Close releases the terminal.
func (s *Session) Close() error {
	return s.Release()
}

// Size returns the terminal width and height, falling back to 80x24 when
// the descriptor is not a terminal.
func (s *Session) Size() (int, int) {
	w, h, err := term.GetSize(s.fd)
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

func (s *Session) restore() error {
	if s.saved == nil {
		return nil
	}
	st := s.saved
	s.saved = nil
	if err := term.Restore(s.fd, st); err != nil {
		return fmt.Errorf("restore terminal mode: %w", err)
	}
	return nil
}
