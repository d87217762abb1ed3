package app

import (
	"context"
	"sync"

	"github.com/evanschultz/koni/internal/domain"
)

// LockedService serializes every call into one Service.
// Use it when several goroutines (server handlers, bots) share a single store.
type LockedService struct {
	mu  sync.Mutex
	svc *Service
}

// NewLockedService wraps svc with a mutual-exclusion guard.
func NewLockedService(svc *Service) *LockedService {
	return &LockedService{svc: svc}
}

// ListNotes returns every persisted note in store order.
func (l *LockedService) ListNotes(ctx context.Context) ([]domain.Note, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.svc.ListNotes(ctx)
}

// CreateNotes inserts all notes as one batch.
func (l *LockedService) CreateNotes(ctx context.Context, notes []domain.Note) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.svc.CreateNotes(ctx, notes)
}

// GetNote fetches one note by id.
func (l *LockedService) GetNote(ctx context.Context, id int64) (domain.Note, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.svc.GetNote(ctx, id)
}

// DeleteNote removes one note and returns its prior value.
func (l *LockedService) DeleteNote(ctx context.Context, id int64) (domain.Note, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.svc.DeleteNote(ctx, id)
}

// UpdateNote forwards to the inert Service.UpdateNote.
func (l *LockedService) UpdateNote(ctx context.Context, id int64, note domain.Note) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.svc.UpdateNote(ctx, id, note)
}
