package app

import (
	"context"

	"github.com/evanschultz/koni/internal/domain"
)

// Repository is the durable note store the service runs against.
type Repository interface {
	Initialize(context.Context) error
	ListNotes(context.Context) ([]domain.Note, error)
	CreateNotes(context.Context, []domain.Note) error
	GetNote(context.Context, int64) (domain.Note, error)
	DeleteNote(context.Context, int64) (domain.Note, error)
	UpdateNote(context.Context, int64, domain.Note) error
}
