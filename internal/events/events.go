package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// TypeNoteEnrichment asks for the summary and sentiment of a note to be computed.
	TypeNoteEnrichment = "note_enrichment"
)

// Event is a request for background work. The payload is kept as raw JSON
// so this package does not depend on the packages that produce or consume it.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NoteEnrichmentPayload is the payload of a TypeNoteEnrichment event.
type NoteEnrichmentPayload struct {
	NoteID  int64  `json:"note_id"`
	Content string `json:"content"`
}

// NewEvent creates an Event of the given type with payload encoded as JSON.
func NewEvent(eventType string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewNoteEnrichmentEvent creates the event emitted after a note is created.
func NewNoteEnrichmentEvent(noteID int64, content string) (*Event, error) {
	return NewEvent(TypeNoteEnrichment, NoteEnrichmentPayload{NoteID: noteID, Content: content})
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

// Handler reacts to emitted events.
type Handler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// Emitter publishes events to the registered handlers.
type Emitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
