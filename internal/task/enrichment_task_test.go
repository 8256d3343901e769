package task

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/notes-api/internal/enrich"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnrichmentTask_Validation(t *testing.T) {
	enricher := &fakeEnricher{}
	writer := &fakeWriter{}

	tests := []struct {
		name     string
		noteID   int64
		enricher Enricher
		writer   EnrichmentWriter
		want     error
	}{
		{"nil enricher", 1, nil, writer, ErrNilEnricher},
		{"nil writer", 1, enricher, nil, ErrNilWriter},
		{"zero note", 0, enricher, writer, ErrInvalidNote},
		{"negative note", -4, enricher, writer, ErrInvalidNote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEnrichmentTask(tt.noteID, "x", tt.enricher, tt.writer, testLogger())
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := NewEnrichmentTask(1, "x", enricher, writer, nil)
	assert.ErrorIs(t, err, ErrNilLogger)
}

func TestEnrichmentTask_Execute(t *testing.T) {
	t.Run("writes both fields", func(t *testing.T) {
		enricher := &fakeEnricher{result: enrich.Result{Summary: strPtr("short"), Sentiment: floatPtr(0.8)}}
		writer := &fakeWriter{}

		task, err := NewEnrichmentTask(5, "long content", enricher, writer, testLogger())
		require.NoError(t, err)

		require.NoError(t, task.Execute(context.Background()))

		require.Len(t, writer.writes, 1)
		assert.Equal(t, int64(5), writer.writes[0].noteID)
		assert.Equal(t, "short", *writer.writes[0].summary)
		assert.InDelta(t, 0.8, *writer.writes[0].sentiment, 1e-9)
		assert.Equal(t, []string{"long content"}, enricher.seen)
		assert.Equal(t, TaskStatusCompleted, task.Status())
	})

	t.Run("partial result keeps missing field absent", func(t *testing.T) {
		enricher := &fakeEnricher{result: enrich.Result{Sentiment: floatPtr(0.1)}}
		writer := &fakeWriter{}

		task, err := NewEnrichmentTask(5, "x", enricher, writer, testLogger())
		require.NoError(t, err)
		require.NoError(t, task.Execute(context.Background()))

		require.Len(t, writer.writes, 1)
		assert.Nil(t, writer.writes[0].summary)
		assert.NotNil(t, writer.writes[0].sentiment)
	})

	t.Run("empty result skips write", func(t *testing.T) {
		writer := &fakeWriter{}
		task, err := NewEnrichmentTask(5, "x", &fakeEnricher{}, writer, testLogger())
		require.NoError(t, err)

		require.NoError(t, task.Execute(context.Background()))
		assert.Empty(t, writer.writes)
	})

	t.Run("deleted note is not an error", func(t *testing.T) {
		enricher := &fakeEnricher{result: enrich.Result{Summary: strPtr("s")}}
		writer := &fakeWriter{missing: true}

		task, err := NewEnrichmentTask(5, "x", enricher, writer, testLogger())
		require.NoError(t, err)

		assert.NoError(t, task.Execute(context.Background()))
		assert.Equal(t, TaskStatusCompleted, task.Status())
	})

	t.Run("write failure", func(t *testing.T) {
		enricher := &fakeEnricher{result: enrich.Result{Summary: strPtr("s")}}
		writer := &fakeWriter{err: errBoom}

		task, err := NewEnrichmentTask(5, "x", enricher, writer, testLogger())
		require.NoError(t, err)

		err = task.Execute(context.Background())
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, TaskStatusFailed, task.Status())
	})

	t.Run("cancelled context", func(t *testing.T) {
		writer := &fakeWriter{}
		task, err := NewEnrichmentTask(5, "x", &fakeEnricher{}, writer, testLogger())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, task.Execute(ctx), context.Canceled)
		assert.Empty(t, writer.writes)
	})
}

func TestEnrichmentTaskFactory_RoundTrip(t *testing.T) {
	factory := NewEnrichmentTaskFactory(&fakeEnricher{}, &fakeWriter{}, testLogger())
	assert.Equal(t, TaskTypeNoteEnrichment, factory.TaskType())

	original, err := factory.CreateTask(12, "# Title\nbody")
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(original.Payload(), &payload))
	assert.Equal(t, float64(12), payload["note_id"])

	rebuilt, err := factory.Rehydrate(original.ID(), original.Payload())
	require.NoError(t, err)

	assert.Equal(t, original.ID(), rebuilt.ID())
	assert.Equal(t, original.Payload(), rebuilt.Payload())
	assert.Equal(t, int64(12), rebuilt.(*EnrichmentTask).NoteID())
}

func TestEnrichmentTaskFactory_RehydrateInvalid(t *testing.T) {
	factory := NewEnrichmentTaskFactory(&fakeEnricher{}, &fakeWriter{}, testLogger())

	_, err := factory.Rehydrate(uuid.New(), []byte(`{`))
	assert.Error(t, err)

	_, err = factory.Rehydrate(uuid.New(), []byte(`{"note_id":0}`))
	assert.ErrorIs(t, err, ErrInvalidNote)
}
