package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/notes-api/internal/store"
)

// Sentinel errors returned by the note service. Callers check them with errors.Is.
var (
	// ErrNoteNotFound indicates that the note does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrNoteNotFound = errors.New("note not found")

	// ErrNoteConflict indicates that a write collided with an existing note.
	// API layer should map this to HTTP 409 Conflict.
	ErrNoteConflict = errors.New("note already exists")
)

// NoteServiceError wraps unexpected errors from the note service with context.
type NoteServiceError struct {
	// Operation is the operation that failed (e.g., "create_note", "list_notes")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for NoteServiceError.
func (e *NoteServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("note service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("note service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *NoteServiceError) Unwrap() error {
	return e.Err
}

// NewNoteServiceError creates a new NoteServiceError.
// Known sentinel errors, including their store-level counterparts, are
// returned directly without wrapping.
func NewNoteServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNoteNotFound), errors.Is(err, store.ErrNoteNotFound):
		return ErrNoteNotFound
	case errors.Is(err, ErrNoteConflict), errors.Is(err, store.ErrDuplicate):
		return ErrNoteConflict
	}

	return &NoteServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
