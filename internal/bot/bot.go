// Package bot answers chat commands against the stored notes.
package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/evanschultz/koni/internal/domain"
)

// Chat commands.
const (
	CommandPing  = "!ping"
	CommandNotes = "!notes"
	CommandHelp  = "!help"
)

// NoteLister is the read-only store access the bot needs.
type NoteLister interface {
	ListNotes(context.Context) ([]domain.Note, error)
}

// Responder turns one chat message into zero or more replies.
type Responder struct {
	notes NoteLister
}

// NewResponder constructs a responder over notes.
func NewResponder(notes NoteLister) *Responder {
	return &Responder{notes: notes}
}

// Respond returns the replies for msg. Messages that are not commands get
// no replies.
func (r *Responder) Respond(ctx context.Context, msg string) ([]string, error) {
	switch strings.TrimSpace(msg) {
	case CommandPing:
		return []string{"Pong!"}, nil
	case CommandHelp:
		return []string{strings.Join([]string{
			CommandPing + "  check the bot is alive",
			CommandNotes + " list every stored note",
			CommandHelp + "  show this message",
		}, "\n")}, nil
	case CommandNotes:
		notes, err := r.notes.ListNotes(ctx)
		if err != nil {
			return nil, fmt.Errorf("list notes: %w", err)
		}
		replies := make([]string, 0, len(notes))
		for i, note := range notes {
			replies = append(replies, FormatNote(i, note))
		}
		return replies, nil
	default:
		return nil, nil
	}
}

// FormatNote renders one note as a chat reply.
func FormatNote(index int, note domain.Note) string {
	return fmt.Sprintf("----------------- note %d ------------------\n%s", index, note.String())
}
