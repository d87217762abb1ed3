package domain

import (
	"fmt"
	"strings"
)

// Note is one persisted (or about to be persisted) text note.
// A zero ID marks a note that has never been read from the store.
type Note struct {
	ID    int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

// NewNote constructs an unpersisted note. The body is kept verbatim.
func NewNote(title, body string) (Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Note{}, ErrInvalidTitle
	}
	return Note{
		Title: title,
		Body:  body,
	}, nil
}

// Persisted reports whether the note carries a store-assigned id.
func (n Note) Persisted() bool {
	return n.ID > 0
}

// Validate checks the invariants a note must hold before it is written.
func (n Note) Validate() error {
	if n.ID < 0 {
		return ErrInvalidID
	}
	if strings.TrimSpace(n.Title) == "" {
		return ErrInvalidTitle
	}
	return nil
}

// String renders the note the way chat replies and the list command print it.
func (n Note) String() string {
	return fmt.Sprintf("title: %s\n%s\n", n.Title, n.Body)
}
