package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/koni/internal/domain"
)

// SnapshotVersion tags the export format.
const SnapshotVersion = "koni.snapshot.v1"

// ErrInvalidSnapshot reports an import document that cannot be applied.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is a portable copy of every note.
type Snapshot struct {
	Version    string         `json:"version" yaml:"version"`
	ExportedAt time.Time      `json:"exported_at" yaml:"exported_at"`
	Notes      []SnapshotNote `json:"notes" yaml:"notes"`
}

// SnapshotNote is one exported note. ID records the source store's id and
// is ignored on import.
type SnapshotNote struct {
	ID    int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

// ExportSnapshot captures every stored note in store order.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	notes, err := s.repo.ListNotes(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Notes:      make([]SnapshotNote, 0, len(notes)),
	}
	for _, note := range notes {
		snap.Notes = append(snap.Notes, SnapshotNote{ID: note.ID, Title: note.Title, Body: note.Body})
	}
	return snap, nil
}

// ImportSnapshot adds every snapshot note as a new note in one batch.
// Nothing is written when any note is invalid.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) (int, error) {
	if err := snap.Validate(); err != nil {
		return 0, err
	}
	notes := make([]domain.Note, 0, len(snap.Notes))
	for _, n := range snap.Notes {
		note, err := domain.NewNote(n.Title, n.Body)
		if err != nil {
			return 0, err
		}
		notes = append(notes, note)
	}
	if err := s.CreateNotes(ctx, notes); err != nil {
		return 0, err
	}
	return len(notes), nil
}

// Validate checks the version tag and every note title. A blank version is
// accepted for hand-written files.
func (s Snapshot) Validate() error {
	switch strings.TrimSpace(s.Version) {
	case "", SnapshotVersion:
	default:
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, s.Version)
	}
	for idx, n := range s.Notes {
		if strings.TrimSpace(n.Title) == "" {
			return fmt.Errorf("%w: notes[%d].title is required", ErrInvalidSnapshot, idx)
		}
	}
	return nil
}
