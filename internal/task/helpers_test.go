package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/notes-api/internal/enrich"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// memTaskStore is an in-memory TaskStore.
type memTaskStore struct {
	mu      sync.Mutex
	tasks   map[uuid.UUID]*StoredTask
	saveErr error
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[uuid.UUID]*StoredTask)}
}

func (s *memTaskStore) SaveTask(_ context.Context, t Task) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.tasks[t.ID()] = &StoredTask{
		TaskID:      t.ID(),
		TaskType:    t.Type(),
		TaskPayload: t.Payload(),
		TaskStatus:  t.Status(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return nil
}

// put inserts a stored task directly, bypassing the runner.
func (s *memTaskStore) put(st *StoredTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now()
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = st.CreatedAt
	}
	s.tasks[st.TaskID] = st
}

func (s *memTaskStore) UpdateTaskStatus(_ context.Context, id uuid.UUID, status TaskStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.tasks[id]
	if !ok {
		return nil
	}
	st.TaskStatus = status
	st.ErrorMessage = errorMsg
	st.UpdatedAt = time.Now()
	return nil
}

func (s *memTaskStore) GetPendingTasks(context.Context) ([]Task, error) {
	return s.byStatus(TaskStatusPending, 0), nil
}

func (s *memTaskStore) GetProcessingTasks(_ context.Context, olderThan time.Duration) ([]Task, error) {
	return s.byStatus(TaskStatusProcessing, olderThan), nil
}

func (s *memTaskStore) byStatus(status TaskStatus, olderThan time.Duration) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var out []Task
	for _, st := range s.tasks {
		if st.TaskStatus != status {
			continue
		}
		if olderThan > 0 && st.UpdatedAt.After(cutoff) {
			continue
		}
		cp := *st
		out = append(out, &cp)
	}
	return out
}

func (s *memTaskStore) status(id uuid.UUID) TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.tasks[id]; ok {
		return st.TaskStatus
	}
	return ""
}

func (s *memTaskStore) errorMessage(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.tasks[id]; ok {
		return st.ErrorMessage
	}
	return ""
}

// fakeTask runs execFn when executed.
type fakeTask struct {
	id     uuid.UUID
	execFn func(ctx context.Context) error
}

func newFakeTask(execFn func(ctx context.Context) error) *fakeTask {
	return &fakeTask{id: uuid.New(), execFn: execFn}
}

func (t *fakeTask) ID() uuid.UUID { return t.id }
func (t *fakeTask) Type() string { return "fake" }
func (t *fakeTask) Payload() []byte { return []byte(`{}`) }
func (t *fakeTask) Status() TaskStatus { return TaskStatusPending }
func (t *fakeTask) Execute(ctx context.Context) error {
	if t.execFn == nil {
		return nil
	}
	return t.execFn(ctx)
}

// fakeEnricher returns a fixed result and records the content it saw.
type fakeEnricher struct {
	mu     sync.Mutex
	result enrich.Result
	seen   []string
}

func (e *fakeEnricher) Enrich(_ context.Context, content string) enrich.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen = append(e.seen, content)
	return e.result
}

type enrichmentWrite struct {
	noteID    int64
	summary   *string
	sentiment *float64
}

// fakeWriter records enrichment writes.
type fakeWriter struct {
	mu      sync.Mutex
	writes  []enrichmentWrite
	missing bool
	err     error
}

func (w *fakeWriter) UpdateEnrichment(_ context.Context, noteID int64, summary *string, sentiment *float64) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return false, w.err
	}
	w.writes = append(w.writes, enrichmentWrite{noteID: noteID, summary: summary, sentiment: sentiment})
	return !w.missing, nil
}

func (w *fakeWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.writes)
}

var errBoom = errors.New("boom")

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }
