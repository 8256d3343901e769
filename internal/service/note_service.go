package service

import (
	"context"
	"database/sql"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/phrazzld/notes-api/internal/domain"
	"github.com/phrazzld/notes-api/internal/events"
	"github.com/phrazzld/notes-api/internal/platform/logger"
	"github.com/phrazzld/notes-api/internal/store"
	"github.com/sahilm/fuzzy"
)

// NoteService provides note-related operations
type NoteService interface {
	// CreateNote stores a new note and requests its enrichment. An empty
	// createdDate is replaced by the current time.
	CreateNote(ctx context.Context, title, content, createdDate string) (*domain.Note, error)

	// GetNote retrieves a note by its ID
	GetNote(ctx context.Context, id int64) (*domain.Note, error)

	// ListNotes returns notes newest first. A non-blank query keeps only the
	// notes whose title or content fuzzy-matches it.
	ListNotes(ctx context.Context, query string) ([]*domain.Note, error)

	// UpdateNote applies patch and returns the updated note
	UpdateNote(ctx context.Context, id int64, patch domain.NotePatch) (*domain.Note, error)

	// DeleteNote removes a note
	DeleteNote(ctx context.Context, id int64) error
}

// noteServiceImpl implements the NoteService interface
type noteServiceImpl struct {
	notes   store.NoteStore
	db      store.TxBeginner
	emitter events.Emitter
	logger  *slog.Logger
	now     func() time.Time
}

// NewNoteService creates a new NoteService.
// db must be the database notes writes to; it is used to run the insert
// in a transaction before the enrichment event is emitted.
func NewNoteService(
	notes store.NoteStore,
	db store.TxBeginner,
	emitter events.Emitter,
	logger *slog.Logger,
) (NoteService, error) {
	if notes == nil {
		return nil, &NoteServiceError{Operation: "new_note_service", Message: "note store cannot be nil"}
	}
	if db == nil {
		return nil, &NoteServiceError{Operation: "new_note_service", Message: "database cannot be nil"}
	}
	if emitter == nil {
		return nil, &NoteServiceError{Operation: "new_note_service", Message: "event emitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &noteServiceImpl{
		notes:   notes,
		db:      db,
		emitter: emitter,
		logger:  logger.With("component", "note_service"),
		now:     time.Now,
	}, nil
}

// Ensure noteServiceImpl implements NoteService
var _ NoteService = (*noteServiceImpl)(nil)

// CreateNote implements NoteService.CreateNote
func (s *noteServiceImpl) CreateNote(
	ctx context.Context,
	title, content, createdDate string,
) (*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	note, err := domain.NewNote(title, content, createdDate, s.now())
	if err != nil {
		log.Debug("rejected invalid note", "error", err)
		return nil, NewNoteServiceError("create_note", "invalid note", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.notes.WithTx(tx).Create(ctx, note)
	})
	if err != nil {
		log.Error("failed to create note", "error", err)
		return nil, NewNoteServiceError("create_note", "failed to save note", err)
	}

	// The note is committed; enrichment is best effort from here on.
	event, err := events.NewNoteEnrichmentEvent(note.ID, note.Content)
	if err != nil {
		log.Error("failed to create note enrichment event",
			"error", err,
			"note_id", note.ID)
		return note, nil
	}

	// The task must be persisted even if the client has already gone away.
	if err := s.emitter.EmitEvent(context.WithoutCancel(ctx), event); err != nil {
		log.Warn("failed to emit note enrichment event, note stays un-enriched",
			"error", err,
			"note_id", note.ID,
			"event_id", event.ID)
		return note, nil
	}

	log.Debug("note enrichment requested",
		"note_id", note.ID,
		"event_id", event.ID)

	return note, nil
}

// GetNote implements NoteService.GetNote
func (s *noteServiceImpl) GetNote(ctx context.Context, id int64) (*domain.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, NewNoteServiceError("get_note", "failed to retrieve note", err)
	}
	return note, nil
}

// ListNotes implements NoteService.ListNotes
func (s *noteServiceImpl) ListNotes(ctx context.Context, query string) ([]*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	notes, err := s.notes.List(ctx)
	if err != nil {
		log.Error("failed to list notes", "error", err)
		return nil, NewNoteServiceError("list_notes", "failed to list notes", err)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return notes, nil
	}

	filtered := filterNotes(notes, query)
	log.Debug("filtered notes",
		"query", query,
		"total", len(notes),
		"matched", len(filtered))
	return filtered, nil
}

// UpdateNote implements NoteService.UpdateNote
func (s *noteServiceImpl) UpdateNote(
	ctx context.Context,
	id int64,
	patch domain.NotePatch,
) (*domain.Note, error) {
	if patch.IsEmpty() {
		note, err := s.notes.GetByID(ctx, id)
		if err != nil {
			return nil, NewNoteServiceError("update_note", "failed to retrieve note", err)
		}
		return note, nil
	}

	note, err := s.notes.Update(ctx, id, patch)
	if err != nil {
		return nil, NewNoteServiceError("update_note", "failed to update note", err)
	}
	return note, nil
}

// DeleteNote implements NoteService.DeleteNote
func (s *noteServiceImpl) DeleteNote(ctx context.Context, id int64) error {
	deleted, err := s.notes.Delete(ctx, id)
	if err != nil {
		return NewNoteServiceError("delete_note", "failed to delete note", err)
	}
	if !deleted {
		return ErrNoteNotFound
	}
	return nil
}

// noteSource exposes notes to fuzzy matching as "title\ncontent".
type noteSource []*domain.Note

func (s noteSource) String(i int) string { return s[i].Title + "\n" + s[i].Content }

func (s noteSource) Len() int { return len(s) }

// filterNotes keeps the notes matching query in their original order.
func filterNotes(notes []*domain.Note, query string) []*domain.Note {
	matches := fuzzy.FindFrom(query, noteSource(notes))

	indexes := make([]int, 0, len(matches))
	for _, m := range matches {
		indexes = append(indexes, m.Index)
	}
	slices.Sort(indexes)

	filtered := make([]*domain.Note, 0, len(indexes))
	for _, i := range indexes {
		filtered = append(filtered, notes[i])
	}
	return filtered
}
