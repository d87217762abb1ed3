package app

import (
	"context"
	"fmt"
	"time"

	"github.com/evanschultz/koni/internal/domain"
)

// Service exposes note operations over one repository.
type Service struct {
	repo  Repository
	clock func() time.Time
}

// NewService constructs a new value for this package.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// Initialize ensures the backing schema exists. Safe to call on every startup.
func (s *Service) Initialize(ctx context.Context) error {
	return s.repo.Initialize(ctx)
}

// ListNotes returns every persisted note in store order.
func (s *Service) ListNotes(ctx context.Context) ([]domain.Note, error) {
	return s.repo.ListNotes(ctx)
}

// CreateNotes validates and inserts all notes as one batch.
// Ids are assigned by the store and are not returned; callers re-list to learn them.
func (s *Service) CreateNotes(ctx context.Context, notes []domain.Note) error {
	if len(notes) == 0 {
		return nil
	}
	batch := make([]domain.Note, 0, len(notes))
	for idx, note := range notes {
		if err := note.Validate(); err != nil {
			return fmt.Errorf("note %d: %w", idx, err)
		}
		note.ID = 0
		batch = append(batch, note)
	}
	return s.repo.CreateNotes(ctx, batch)
}

// GetNote fetches one note by id.
func (s *Service) GetNote(ctx context.Context, id int64) (domain.Note, error) {
	if id <= 0 {
		return domain.Note{}, ErrNotFound
	}
	return s.repo.GetNote(ctx, id)
}

// DeleteNote removes one note and returns the value it held before deletion.
func (s *Service) DeleteNote(ctx context.Context, id int64) (domain.Note, error) {
	if id <= 0 {
		return domain.Note{}, ErrNotFound
	}
	return s.repo.DeleteNote(ctx, id)
}

// UpdateNote is reserved: editing notes in place is not implemented and the
// call succeeds without changing anything.
func (s *Service) UpdateNote(ctx context.Context, id int64, note domain.Note) error {
	return s.repo.UpdateNote(ctx, id, note)
}
