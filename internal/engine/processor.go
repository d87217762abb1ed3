package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/evanschultz/koni/internal/app"
	"github.com/evanschultz/koni/internal/domain"
	"github.com/evanschultz/koni/internal/input"
	"github.com/evanschultz/koni/internal/session"
)

// Processor owns the session state and applies events to it.
type Processor struct {
	svc    NoteService
	keys   Resolver
	editor Editor
	term   Terminal
	input  InputControl
	clip   Clipboard
	notify Notifier
	log    Logger

	state session.State
}

// Option configures optional processor collaborators.
type Option func(*Processor)

// WithClipboard enables yanking note bodies.
func WithClipboard(c Clipboard) Option {
	return func(p *Processor) {
		p.clip = c
	}
}

// WithNotifier announces every saved note.
func WithNotifier(n Notifier) Option {
	return func(p *Processor) {
		p.notify = n
	}
}

// WithLogger replaces the default logger.
func WithLogger(l Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.log = l
		}
	}
}

// NewProcessor constructs a processor in the Home view.
func NewProcessor(svc NoteService, keys Resolver, editor Editor, term Terminal, in InputControl, opts ...Option) *Processor {
	p := &Processor{
		svc:    svc,
		keys:   keys,
		editor: editor,
		term:   term,
		input:  in,
		log:    FromCharm(nil),
		state:  session.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// State returns a copy of the current session state.
func (p *Processor) State() session.State {
	return p.state.Clone()
}

// Handle applies one input event. Key events are dropped while an editor
// session is pending. Store failures are reported in the state's status
// line and returned; the session stays usable.
func (p *Processor) Handle(ctx context.Context, ev input.Event) error {
	if ev.Kind != input.EventKey {
		return nil
	}
	if p.state.EditorActive {
		p.log.Debug("key dropped during editor session", "key", ev.Key.String())
		return nil
	}
	cmd, r := p.keys.Resolve(p.state.View, ev.Key)
	if cmd == session.None {
		return nil
	}
	effect := p.state.Apply(cmd, r)
	p.log.Debug("command applied", "command", cmd.String(), "view", p.state.View.String())
	switch effect {
	case session.EffectRefresh:
		return p.refresh(ctx)
	case session.EffectDelete:
		return p.deleteSelected(ctx)
	case session.EffectYank:
		return p.yank()
	}
	return nil
}

func (p *Processor) refresh(ctx context.Context) error {
	notes, err := p.svc.ListNotes(ctx)
	if err != nil {
		p.state.Status = "could not load notes"
		p.log.Error("list notes failed", "err", err)
		return fmt.Errorf("refresh notes: %w", err)
	}
	p.state.SetNotes(notes)
	return nil
}

func (p *Processor) deleteSelected(ctx context.Context) error {
	note, ok := p.state.Selected()
	if !ok || !note.Persisted() {
		p.state.Status = "nothing to delete"
		p.log.Warn("delete without selection", "loaded", p.state.Loaded, "notes", len(p.state.Notes))
		return fmt.Errorf("delete selected note: %w", app.ErrInvariantViolation)
	}
	if _, err := p.svc.DeleteNote(ctx, note.ID); err != nil {
		if errors.Is(err, app.ErrNotFound) {
			p.log.Info("selected note already gone", "id", note.ID)
			return p.refresh(ctx)
		}
		p.state.Status = "delete failed"
		p.log.Error("delete note failed", "id", note.ID, "err", err)
		return fmt.Errorf("delete note %d: %w", note.ID, err)
	}
	p.log.Info("note deleted", "id", note.ID)
	if err := p.refresh(ctx); err != nil {
		return err
	}
	p.state.Status = fmt.Sprintf("deleted %q", note.Title)
	return nil
}

func (p *Processor) yank() error {
	note, ok := p.state.Selected()
	if !ok {
		return nil
	}
	if p.clip == nil {
		p.state.Status = "clipboard unavailable"
		return nil
	}
	if err := p.clip.WriteAll(note.Body); err != nil {
		p.state.Status = "copy failed"
		p.log.Warn("clipboard write failed", "err", err)
		return fmt.Errorf("copy note body: %w", err)
	}
	p.state.Status = fmt.Sprintf("copied %q", note.Title)
	return nil
}

// RunEditor hands the terminal to the editor, then saves the draft title
// with the returned body as a new note and lands on the refreshed list.
// Input polling and the terminal are restored on every path.
func (p *Processor) RunEditor(ctx context.Context) error {
	if !p.state.EditorActive {
		return nil
	}
	title := p.state.Draft
	body, editErr := p.editorSession(ctx)
	p.state.FinishEditor()
	if editErr != nil {
		p.log.Error("editor session failed", "err", editErr)
		p.state.Status = "editor failed, note not saved"
		if err := p.refresh(ctx); err != nil {
			return errors.Join(editErr, err)
		}
		return editErr
	}

	note, err := domain.NewNote(title, body)
	if err != nil {
		p.state.Status = "note not saved: title is empty"
		return fmt.Errorf("build note: %w", err)
	}
	if err := p.svc.CreateNotes(ctx, []domain.Note{note}); err != nil {
		p.state.Status = "could not save note"
		p.log.Error("create note failed", "title", note.Title, "err", err)
		return errors.Join(fmt.Errorf("save note: %w", err), p.refresh(ctx))
	}
	p.log.Info("note saved", "title", note.Title)
	if p.notify != nil {
		if err := p.notify.NoteSaved(note.Title); err != nil {
			p.log.Warn("notification failed", "err", err)
		}
	}
	if err := p.refresh(ctx); err != nil {
		return err
	}
	p.state.Status = fmt.Sprintf("saved %q", note.Title)
	return nil
}

// editorSession suspends input, releases the terminal, and runs the editor.
// Deferred steps reacquire the terminal first and then resume input.
func (p *Processor) editorSession(ctx context.Context) (body string, err error) {
	if err := p.input.Suspend(ctx); err != nil {
		return "", fmt.Errorf("suspend input: %w", err)
	}
	defer func() {
		if rerr := p.input.Resume(ctx); rerr != nil {
			err = errors.Join(err, fmt.Errorf("resume input: %w", rerr))
		}
	}()
	defer func() {
		if aerr := p.term.Acquire(); aerr != nil {
			err = errors.Join(err, fmt.Errorf("acquire terminal: %w", aerr))
		}
	}()
	if err := p.term.Release(); err != nil {
		return "", fmt.Errorf("release terminal: %w", err)
	}
	return p.editor.Edit(ctx)
}
