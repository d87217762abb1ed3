package session

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/evanschultz/koni/internal/domain"
)

func notesN(n int) []domain.Note {
	out := make([]domain.Note, 0, n)
	for i := range n {
		out = append(out, domain.Note{ID: int64(i + 1), Title: string(rune('A' + i))})
	}
	return out
}

// TestSelectionStaysInBounds verifies random next/previous sequences never leave the snapshot range.
func TestSelectionStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for size := range 6 {
		s := New()
		s.Apply(OpenNotes, 0)
		s.SetNotes(notesN(size))
		for step := range 500 {
			cmd := Next
			if rng.IntN(2) == 0 {
				cmd = Previous
			}
			s.Apply(cmd, 0)
			upper := max(1, size)
			if s.Selection < 0 || s.Selection >= upper {
				t.Fatalf("size %d step %d: selection %d out of [0,%d)", size, step, s.Selection, upper)
			}
		}
	}
}

// TestMovementWraps verifies wraparound at both ends of the list.
func TestMovementWraps(t *testing.T) {
	s := New()
	s.Apply(OpenNotes, 0)
	s.SetNotes(notesN(3))

	s.Apply(Previous, 0)
	if s.Selection != 2 {
		t.Fatalf("expected previous from 0 to wrap to 2, got %d", s.Selection)
	}
	s.Apply(Next, 0)
	if s.Selection != 0 {
		t.Fatalf("expected next from last to wrap to 0, got %d", s.Selection)
	}
}

// TestMovementOnEmptySnapshotIsPinned verifies an empty list pins selection at zero.
func TestMovementOnEmptySnapshotIsPinned(t *testing.T) {
	s := New()
	s.Apply(OpenNotes, 0)
	s.SetNotes(nil)
	s.Apply(Next, 0)
	s.Apply(Previous, 0)
	if s.Selection != 0 {
		t.Fatalf("expected selection pinned at 0, got %d", s.Selection)
	}
	if _, ok := s.Selected(); ok {
		t.Fatal("expected no selected note on empty snapshot")
	}
}

// TestSetNotesClampsAfterDeletingLast verifies clamp-to-last-valid after a refresh.
func TestSetNotesClampsAfterDeletingLast(t *testing.T) {
	s := New()
	s.SetNotes(notesN(3))
	s.Selection = 2
	s.SetNotes(notesN(2))
	if s.Selection != 1 {
		t.Fatalf("expected selection 1, got %d", s.Selection)
	}

	s.SetNotes(nil)
	if s.Selection != 0 {
		t.Fatalf("expected selection 0 after deleting the only note, got %d", s.Selection)
	}
	if !s.Loaded || len(s.Notes) != 0 {
		t.Fatalf("expected loaded empty snapshot, got loaded=%v notes=%d", s.Loaded, len(s.Notes))
	}
}

// TestLoadedSentinel verifies not-yet-loaded differs from loaded-and-empty.
func TestLoadedSentinel(t *testing.T) {
	s := New()
	if s.Loaded {
		t.Fatal("expected fresh state to be unloaded")
	}
	s.SetNotes([]domain.Note{})
	if !s.Loaded {
		t.Fatal("expected loaded after SetNotes")
	}
}

// TestViewTransitions verifies the view state machine.
func TestViewTransitions(t *testing.T) {
	cases := []struct {
		name   string
		start  View
		cmd    Command
		want   View
		effect Effect
	}{
		{name: "home to list", start: ViewHome, cmd: OpenNotes, want: ViewList, effect: EffectRefresh},
		{name: "home to add", start: ViewHome, cmd: NewNote, want: ViewAdd},
		{name: "list to add", start: ViewList, cmd: NewNote, want: ViewAdd},
		{name: "delete to add", start: ViewDelete, cmd: NewNote, want: ViewAdd},
		{name: "list home", start: ViewList, cmd: GoHome, want: ViewHome},
		{name: "delete home", start: ViewDelete, cmd: GoHome, want: ViewHome},
		{name: "add cancel", start: ViewAdd, cmd: Cancel, want: ViewHome},
		{name: "add ignores go home", start: ViewAdd, cmd: GoHome, want: ViewAdd},
		{name: "home to delete", start: ViewHome, cmd: OpenDelete, want: ViewDelete, effect: EffectRefresh},
		{name: "list delete", start: ViewList, cmd: DeleteSelected, want: ViewList, effect: EffectDelete},
		{name: "delete view delete", start: ViewDelete, cmd: DeleteSelected, want: ViewDelete, effect: EffectDelete},
		{name: "home delete ignored", start: ViewHome, cmd: DeleteSelected, want: ViewHome},
		{name: "list yank", start: ViewList, cmd: Yank, want: ViewList, effect: EffectYank},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New()
			s.View = tc.start
			got := s.Apply(tc.cmd, 0)
			if s.View != tc.want {
				t.Fatalf("expected view %s, got %s", tc.want, s.View)
			}
			if got != tc.effect {
				t.Fatalf("expected effect %d, got %d", tc.effect, got)
			}
		})
	}
}

// TestDraftEditing verifies typing, backspace, and cancel in the Add view.
func TestDraftEditing(t *testing.T) {
	s := New()
	s.Apply(NewNote, 0)
	for _, r := range "Grocé" {
		s.Apply(TypeRune, r)
	}
	s.Apply(Backspace, 0)
	if s.Draft != "Groc" {
		t.Fatalf("expected draft Groc, got %q", s.Draft)
	}
	s.Apply(TypeRune, 'q')
	if s.ExitRequested || s.Draft != "Grocq" {
		t.Fatalf("expected q to type in Add view, got draft %q exit %v", s.Draft, s.ExitRequested)
	}
	s.Apply(Cancel, 0)
	if s.View != ViewHome || s.Draft != "" {
		t.Fatalf("expected cancel to discard draft, got view %s draft %q", s.View, s.Draft)
	}
}

// TestBeginBodyRequiresTitle verifies the editor is not started for a blank title.
func TestBeginBodyRequiresTitle(t *testing.T) {
	s := New()
	s.Apply(NewNote, 0)
	s.Apply(BeginBody, 0)
	if s.EditorActive {
		t.Fatal("expected editor to stay inactive for blank draft")
	}
	if s.Status == "" {
		t.Fatal("expected status hint for blank draft")
	}
	s.Apply(TypeRune, 'x')
	s.Apply(BeginBody, 0)
	if !s.EditorActive {
		t.Fatal("expected editor active")
	}
}

// TestEditorActiveFreezesState verifies commands are no-ops during an editor session.
func TestEditorActiveFreezesState(t *testing.T) {
	s := New()
	s.Apply(NewNote, 0)
	s.Apply(TypeRune, 'x')
	s.Apply(BeginBody, 0)
	before := s.Clone()
	for _, cmd := range []Command{TypeRune, Backspace, Cancel, Quit, Next, OpenNotes} {
		s.Apply(cmd, 'z')
	}
	if !reflect.DeepEqual(before, s) {
		t.Fatalf("expected state unchanged, before %#v after %#v", before, s)
	}

	s.FinishEditor()
	if s.EditorActive || s.View != ViewList || s.Draft != "" {
		t.Fatalf("unexpected state after FinishEditor %#v", s)
	}
}

// TestQuitIsMonotonic verifies exit cannot be undone.
func TestQuitIsMonotonic(t *testing.T) {
	s := New()
	s.Apply(Quit, 0)
	s.Apply(OpenNotes, 0)
	if !s.ExitRequested || s.View != ViewHome {
		t.Fatalf("expected exit requested and no further transitions, got %#v", s)
	}
}

// TestTabIndexOrdering verifies the header order.
func TestTabIndexOrdering(t *testing.T) {
	for i, v := range []View{ViewHome, ViewList, ViewAdd, ViewDelete} {
		if v.TabIndex() != i {
			t.Fatalf("expected %s at %d, got %d", v, i, v.TabIndex())
		}
	}
}
