package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/notes-api/internal/domain"
)

// NoteStore defines the interface for note persistence.
type NoteStore interface {
	// Create inserts note and writes the newly assigned ID back into note.ID.
	// Enrichment fields are stored as absent regardless of their value.
	// Returns ErrDuplicate if the insert violates a uniqueness constraint.
	Create(ctx context.Context, note *domain.Note) error

	// GetByID retrieves a note by its ID.
	// Returns ErrNoteNotFound if the note does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Note, error)

	// List returns every note, newest ID first. It returns an empty slice,
	// never nil, when there are no notes.
	List(ctx context.Context) ([]*domain.Note, error)

	// Update applies patch to the note and returns the stored result.
	// Returns ErrNoteNotFound if the note does not exist.
	Update(ctx context.Context, id int64, patch domain.NotePatch) (*domain.Note, error)

	// UpdateEnrichment writes the enrichment fields of an existing note.
	// A nil argument keeps the stored value. It never inserts: when the
	// note no longer exists it returns false and no error.
	UpdateEnrichment(ctx context.Context, id int64, summary *string, sentiment *float64) (bool, error)

	// Delete removes the note and reports whether a row was deleted.
	Delete(ctx context.Context, id int64) (bool, error)

	// WithTx returns a NoteStore bound to tx.
	WithTx(tx *sql.Tx) NoteStore
}
