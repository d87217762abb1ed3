package session

import (
	"strings"
	"unicode/utf8"

	"github.com/evanschultz/koni/internal/domain"
)

// Command is one user intent resolved from a key press.
type Command int

// Command values.
const (
	None Command = iota
	OpenNotes
	OpenDelete
	NewNote
	Cancel
	BeginBody
	Next
	Previous
	DeleteSelected
	GoHome
	Quit
	Yank
	TypeRune
	Backspace
)

// String returns a stable name for logs.
func (c Command) String() string {
	switch c {
	case OpenNotes:
		return "open_notes"
	case OpenDelete:
		return "open_delete"
	case NewNote:
		return "new_note"
	case Cancel:
		return "cancel"
	case BeginBody:
		return "begin_body"
	case Next:
		return "next"
	case Previous:
		return "previous"
	case DeleteSelected:
		return "delete_selected"
	case GoHome:
		return "go_home"
	case Quit:
		return "quit"
	case Yank:
		return "yank"
	case TypeRune:
		return "type_rune"
	case Backspace:
		return "backspace"
	default:
		return "none"
	}
}

// Effect is the side effect a transition asks its caller to perform.
type Effect int

// Effect values.
const (
	EffectNone Effect = iota
	// EffectRefresh asks for a fresh snapshot from the store.
	EffectRefresh
	// EffectDelete asks for the selected note to be deleted, then a refresh.
	EffectDelete
	// EffectYank asks for the selected body to be copied to the clipboard.
	EffectYank
)

// State is the whole interactive session. It has one writer.
type State struct {
	View          View
	Notes         []domain.Note
	Loaded        bool
	Selection     int
	Draft         string
	EditorActive  bool
	ExitRequested bool
	Status        string
}

// New returns the initial session: Home view, nothing loaded.
func New() State {
	return State{View: ViewHome}
}

// Apply runs the transition for cmd. r is only read for TypeRune. Commands
// that do not apply to the current view leave the state untouched and
// return EffectNone.
func (s *State) Apply(cmd Command, r rune) Effect {
	if s.ExitRequested || s.EditorActive {
		return EffectNone
	}
	if cmd == Quit {
		s.ExitRequested = true
		return EffectNone
	}
	if s.View == ViewAdd {
		return s.applyAdd(cmd, r)
	}
	switch cmd {
	case OpenNotes:
		s.View = ViewList
		s.Status = ""
		return EffectRefresh
	case OpenDelete:
		s.View = ViewDelete
		s.Status = ""
		return EffectRefresh
	case NewNote:
		s.View = ViewAdd
		s.Draft = ""
		s.Status = ""
	case GoHome:
		s.View = ViewHome
		s.Status = ""
	case Next:
		if s.View.ShowsNotes() {
			s.MoveNext()
		}
	case Previous:
		if s.View.ShowsNotes() {
			s.MovePrevious()
		}
	case DeleteSelected:
		if s.View.ShowsNotes() {
			return EffectDelete
		}
	case Yank:
		if s.View.ShowsNotes() {
			return EffectYank
		}
	}
	return EffectNone
}

func (s *State) applyAdd(cmd Command, r rune) Effect {
	switch cmd {
	case Cancel:
		s.View = ViewHome
		s.Draft = ""
		s.Status = ""
	case TypeRune:
		s.Draft += string(r)
	case Backspace:
		if s.Draft != "" {
			_, size := utf8.DecodeLastRuneInString(s.Draft)
			s.Draft = s.Draft[:len(s.Draft)-size]
		}
	case BeginBody:
		if strings.TrimSpace(s.Draft) == "" {
			s.Status = "type a title before opening the editor"
			return EffectNone
		}
		s.EditorActive = true
		s.Status = ""
	}
	return EffectNone
}

// SetNotes replaces the snapshot and clamps the selection into range.
func (s *State) SetNotes(notes []domain.Note) {
	s.Notes = append([]domain.Note(nil), notes...)
	s.Loaded = true
	s.clamp()
}

func (s *State) clamp() {
	if s.Selection >= len(s.Notes) {
		s.Selection = max(0, len(s.Notes)-1)
	}
	if s.Selection < 0 {
		s.Selection = 0
	}
}

// MoveNext advances the selection, wrapping to the first note.
func (s *State) MoveNext() {
	n := len(s.Notes)
	if n == 0 {
		s.Selection = 0
		return
	}
	if s.Selection >= n-1 {
		s.Selection = 0
		return
	}
	s.Selection++
}

// MovePrevious moves the selection back, wrapping to the last note.
func (s *State) MovePrevious() {
	n := len(s.Notes)
	if n == 0 {
		s.Selection = 0
		return
	}
	if s.Selection <= 0 {
		s.Selection = n - 1
		return
	}
	s.Selection--
}

// Selected returns the note under the cursor. It reports false before the
// first load and when the snapshot is empty.
func (s State) Selected() (domain.Note, bool) {
	if !s.Loaded || s.Selection < 0 || s.Selection >= len(s.Notes) {
		return domain.Note{}, false
	}
	return s.Notes[s.Selection], true
}

// FinishEditor leaves the editor sub-session and lands on the note list.
// The caller refreshes the snapshot afterwards.
func (s *State) FinishEditor() {
	s.EditorActive = false
	s.Draft = ""
	s.View = ViewList
}

// Clone returns a deep copy, safe to hand to a renderer on another goroutine.
func (s State) Clone() State {
	out := s
	out.Notes = append([]domain.Note(nil), s.Notes...)
	return out
}
