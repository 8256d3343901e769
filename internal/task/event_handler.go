package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/notes-api/internal/events"
)

// Submitter accepts tasks for background execution. *TaskRunner implements it.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// EnrichmentEventHandler turns note enrichment events into enrichment tasks
// and submits them for execution.
type EnrichmentEventHandler struct {
	factory   *EnrichmentTaskFactory
	submitter Submitter
	logger    *slog.Logger
}

// NewEnrichmentEventHandler creates a new EnrichmentEventHandler
func NewEnrichmentEventHandler(factory *EnrichmentTaskFactory, submitter Submitter, logger *slog.Logger) *EnrichmentEventHandler {
	return &EnrichmentEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With("component", "enrichment_event_handler"),
	}
}

// HandleEvent implements events.Handler. Events of other types are ignored.
func (h *EnrichmentEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	log := h.logger.With("event_id", event.ID, "event_type", event.Type)

	if event.Type != events.TypeNoteEnrichment {
		log.Debug("ignoring event with unsupported type")
		return nil
	}

	var payload events.NoteEnrichmentPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		log.Error("failed to unmarshal payload", "error", err)
		return err
	}

	task, err := h.factory.CreateTask(payload.NoteID, payload.Content)
	if err != nil {
		log.Error("failed to create task", "error", err, "note_id", payload.NoteID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, task); err != nil {
		log.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"note_id", payload.NoteID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	log.Debug("enrichment task submitted", "task_id", task.ID(), "note_id", payload.NoteID)
	return nil
}

var _ events.Handler = (*EnrichmentEventHandler)(nil)
