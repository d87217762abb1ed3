// Package engine drives an interactive note session: it applies input
// events to the session state, performs the store side effects, and hands
// the terminal to an external editor when a note body is written.
package engine

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/evanschultz/koni/internal/domain"
	"github.com/evanschultz/koni/internal/session"
)

// NoteService is the slice of the note service the engine uses.
type NoteService interface {
	ListNotes(context.Context) ([]domain.Note, error)
	CreateNotes(context.Context, []domain.Note) error
	DeleteNote(context.Context, int64) (domain.Note, error)
}

// Resolver maps key presses to commands for a view.
type Resolver interface {
	Resolve(view session.View, k tea.Key) (session.Command, rune)
}

// Renderer draws one frame of the session.
type Renderer interface {
	Render(session.State) error
}

// Editor runs an external editor and returns the text the user saved.
type Editor interface {
	Edit(ctx context.Context) (string, error)
}

// Terminal is exclusive ownership of the user's terminal.
type Terminal interface {
	Acquire() error
	Release() error
}

// InputControl pauses and resumes key polling.
type InputControl interface {
	Suspend(ctx context.Context) error
	Resume(ctx context.Context) error
}

// Clipboard receives yanked note bodies.
type Clipboard interface {
	WriteAll(text string) error
}

// Notifier announces saved notes.
type Notifier interface {
	NoteSaved(title string) error
}

// Logger is the structured logger surface used by the engine.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}
