package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/notes-api/internal/enrich"
)

// Common errors
var (
	ErrNilEnricher = errors.New("enricher cannot be nil")
	ErrNilWriter   = errors.New("enrichment writer cannot be nil")
	ErrNilLogger   = errors.New("logger cannot be nil")
	ErrInvalidNote = errors.New("note ID must be positive")
)

// Enricher computes the derived fields of a note's content. It never fails;
// fields it could not compute are left nil in the result.
type Enricher interface {
	Enrich(ctx context.Context, content string) enrich.Result
}

// EnrichmentWriter persists enrichment results. It reports false when the
// note no longer exists.
type EnrichmentWriter interface {
	UpdateEnrichment(ctx context.Context, noteID int64, summary *string, sentiment *float64) (bool, error)
}

type enrichmentPayload struct {
	NoteID  int64  `json:"note_id"`
	Content string `json:"content"`
}

// EnrichmentTask computes the summary and sentiment of one note and writes
// them back. The content is captured when the task is created.
type EnrichmentTask struct {
	id       uuid.UUID
	noteID   int64
	content  string
	enricher Enricher
	writer   EnrichmentWriter
	logger   *slog.Logger
	status   TaskStatus
}

// NewEnrichmentTask creates a pending enrichment task with a fresh ID.
func NewEnrichmentTask(
	noteID int64,
	content string,
	enricher Enricher,
	writer EnrichmentWriter,
	logger *slog.Logger,
) (*EnrichmentTask, error) {
	return newEnrichmentTask(uuid.New(), noteID, content, enricher, writer, logger)
}

func newEnrichmentTask(
	id uuid.UUID,
	noteID int64,
	content string,
	enricher Enricher,
	writer EnrichmentWriter,
	logger *slog.Logger,
) (*EnrichmentTask, error) {
	if enricher == nil {
		return nil, ErrNilEnricher
	}
	if writer == nil {
		return nil, ErrNilWriter
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if noteID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNote, noteID)
	}

	return &EnrichmentTask{
		id:       id,
		noteID:   noteID,
		content:  content,
		enricher: enricher,
		writer:   writer,
		logger:   logger.With("task_type", TaskTypeNoteEnrichment, "note_id", noteID),
		status:   TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *EnrichmentTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *EnrichmentTask) Type() string {
	return TaskTypeNoteEnrichment
}

// NoteID returns the note this task enriches.
func (t *EnrichmentTask) NoteID() int64 {
	return t.noteID
}

// Payload returns the task data as a byte slice
func (t *EnrichmentTask) Payload() []byte {
	data, err := json.Marshal(enrichmentPayload{NoteID: t.noteID, Content: t.content})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *EnrichmentTask) Status() TaskStatus {
	return t.status
}

// Execute enriches the captured content and stores the result. A note that
// was deleted in the meantime is not an error.
func (t *EnrichmentTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	result := t.enricher.Enrich(ctx, t.content)
	t.logger.Debug("enrichment computed",
		"has_summary", result.Summary != nil,
		"has_sentiment", result.Sentiment != nil)

	if result.Summary == nil && result.Sentiment == nil {
		t.status = TaskStatusCompleted
		t.logger.Warn("no enrichment could be computed, note left unchanged")
		return nil
	}

	found, err := t.writer.UpdateEnrichment(ctx, t.noteID, result.Summary, result.Sentiment)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to write enrichment", "error", err)
		return fmt.Errorf("failed to write enrichment for note %d: %w", t.noteID, err)
	}

	t.status = TaskStatusCompleted
	if !found {
		t.logger.Info("note deleted before enrichment finished, result discarded")
		return nil
	}

	t.logger.Info("note enriched")
	return nil
}

var _ Task = (*EnrichmentTask)(nil)
