package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/notes-api/internal/domain"
	"github.com/phrazzld/notes-api/internal/platform/logger"
	"github.com/phrazzld/notes-api/internal/store"
)

const noteColumns = `id, title, content, summary, sentiment, created_date`

// NoteStore implements store.NoteStore on top of database/sql for both
// PostgreSQL and SQLite.
type NoteStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewNoteStore creates a NoteStore. db may be a *sql.DB or a *sql.Tx.
// If logger is nil, a default logger will be used.
func NewNoteStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *NoteStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &NoteStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "note_store")),
	}
}

// Ensure NoteStore implements store.NoteStore interface
var _ store.NoteStore = (*NoteStore)(nil)

// WithTx implements store.NoteStore.WithTx
func (s *NoteStore) WithTx(tx *sql.Tx) store.NoteStore {
	return &NoteStore{db: tx, dialect: s.dialect, logger: s.logger}
}

func (s *NoteStore) q(query string) string {
	return Rebind(s.dialect, query)
}

// Create implements store.NoteStore.Create
func (s *NoteStore) Create(ctx context.Context, note *domain.Note) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := note.Validate(); err != nil {
		log.Warn("note validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := s.q(`
		INSERT INTO notes (title, content, created_date)
		VALUES (?, ?, ?)
		RETURNING id
	`)

	var id int64
	if err := s.db.QueryRowContext(ctx, query, note.Title, note.Content, note.CreatedDate).Scan(&id); err != nil {
		log.Error("failed to create note", slog.String("error", err.Error()))
		return store.NewStoreError("note", "create", "insert failed", MapError(err))
	}

	note.ID = id
	note.Summary = nil
	note.Sentiment = nil

	log.Info("note created", slog.Int64("note_id", id))
	return nil
}

// GetByID implements store.NoteStore.GetByID
func (s *NoteStore) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.q(`SELECT ` + noteColumns + ` FROM notes WHERE id = ?`)

	note, err := scanNote(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("note not found", slog.Int64("note_id", id))
			return nil, store.ErrNoteNotFound
		}
		log.Error("failed to get note by ID",
			slog.String("error", err.Error()),
			slog.Int64("note_id", id))
		return nil, store.NewStoreError("note", "get", "select failed", MapError(err))
	}

	return note, nil
}

// List implements store.NoteStore.List
func (s *NoteStore) List(ctx context.Context) ([]*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY id DESC`)
	if err != nil {
		log.Error("failed to list notes", slog.String("error", err.Error()))
		return nil, store.NewStoreError("note", "list", "select failed", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	notes := []*domain.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			log.Error("failed to scan note row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("note", "list", "scan failed", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("note", "list", "row iteration failed", err)
	}

	log.Debug("listed notes", slog.Int("count", len(notes)))
	return notes, nil
}

// Update implements store.NoteStore.Update
// Absent patch fields are bound as NULL and COALESCE keeps the stored value,
// so the read-modify-write happens in a single statement.
func (s *NoteStore) Update(ctx context.Context, id int64, patch domain.NotePatch) (*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := patch.Validate(); err != nil {
		log.Warn("note patch validation failed",
			slog.String("error", err.Error()),
			slog.Int64("note_id", id))
		return nil, err
	}

	query := s.q(`
		UPDATE notes
		SET title = COALESCE(?, title),
			content = COALESCE(?, content),
			created_date = COALESCE(?, created_date)
		WHERE id = ?
		RETURNING ` + noteColumns)

	note, err := scanNote(s.db.QueryRowContext(ctx, query,
		nullable(patch.Title), nullable(patch.Content), nullable(patch.CreatedDate), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("note not found for update", slog.Int64("note_id", id))
			return nil, store.ErrNoteNotFound
		}
		log.Error("failed to update note",
			slog.String("error", err.Error()),
			slog.Int64("note_id", id))
		return nil, store.NewStoreError("note", "update", "update failed", MapError(err))
	}

	log.Info("note updated", slog.Int64("note_id", id))
	return note, nil
}

// UpdateEnrichment implements store.NoteStore.UpdateEnrichment
func (s *NoteStore) UpdateEnrichment(ctx context.Context, id int64, summary *string, sentiment *float64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.q(`
		UPDATE notes
		SET summary = COALESCE(?, summary),
			sentiment = COALESCE(?, sentiment)
		WHERE id = ?
	`)

	result, err := s.db.ExecContext(ctx, query, nullable(summary), nullable(sentiment), id)
	if err != nil {
		log.Error("failed to write note enrichment",
			slog.String("error", err.Error()),
			slog.Int64("note_id", id))
		return false, store.NewStoreError("note", "update_enrichment", "update failed", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.Int64("note_id", id))
		return false, store.NewStoreError("note", "update_enrichment", "rows affected unavailable", err)
	}

	if rowsAffected == 0 {
		log.Debug("note gone before enrichment was written", slog.Int64("note_id", id))
		return false, nil
	}

	log.Debug("note enrichment written",
		slog.Int64("note_id", id),
		slog.Bool("has_summary", summary != nil),
		slog.Bool("has_sentiment", sentiment != nil))
	return true, nil
}

// Delete implements store.NoteStore.Delete
func (s *NoteStore) Delete(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, s.q(`DELETE FROM notes WHERE id = ?`), id)
	if err != nil {
		log.Error("failed to delete note",
			slog.String("error", err.Error()),
			slog.Int64("note_id", id))
		return false, store.NewStoreError("note", "delete", "delete failed", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError("note", "delete", "rows affected unavailable", err)
	}

	if rowsAffected == 0 {
		log.Debug("note not found for delete", slog.Int64("note_id", id))
		return false, nil
	}

	log.Info("note deleted", slog.Int64("note_id", id))
	return true, nil
}

// nullable binds a nil pointer as SQL NULL and a non-nil one as its value.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*domain.Note, error) {
	var (
		note      domain.Note
		summary   sql.NullString
		sentiment sql.NullFloat64
	)

	if err := row.Scan(&note.ID, &note.Title, &note.Content, &summary, &sentiment, &note.CreatedDate); err != nil {
		return nil, err
	}

	if summary.Valid {
		note.Summary = &summary.String
	}
	if sentiment.Valid {
		note.Sentiment = &sentiment.Float64
	}
	return &note, nil
}
