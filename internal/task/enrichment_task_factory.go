package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// EnrichmentTaskFactory builds enrichment tasks, both fresh ones for newly
// created notes and rehydrated ones recovered from the task store.
type EnrichmentTaskFactory struct {
	enricher Enricher
	writer   EnrichmentWriter
	logger   *slog.Logger
}

// NewEnrichmentTaskFactory creates a new EnrichmentTaskFactory
func NewEnrichmentTaskFactory(enricher Enricher, writer EnrichmentWriter, logger *slog.Logger) *EnrichmentTaskFactory {
	return &EnrichmentTaskFactory{
		enricher: enricher,
		writer:   writer,
		logger:   logger.With("component", "enrichment_task_factory"),
	}
}

// CreateTask creates a new enrichment task for the given note content.
func (f *EnrichmentTaskFactory) CreateTask(noteID int64, content string) (*EnrichmentTask, error) {
	return NewEnrichmentTask(noteID, content, f.enricher, f.writer, f.logger)
}

// TaskType implements Factory.
func (f *EnrichmentTaskFactory) TaskType() string {
	return TaskTypeNoteEnrichment
}

// Rehydrate implements Factory. The task keeps its original ID so status
// updates land on the stored row.
func (f *EnrichmentTaskFactory) Rehydrate(id uuid.UUID, payload []byte) (Task, error) {
	var p enrichmentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("invalid enrichment payload: %w", err)
	}
	return newEnrichmentTask(id, p.NoteID, p.Content, f.enricher, f.writer, f.logger)
}

var _ Factory = (*EnrichmentTaskFactory)(nil)
