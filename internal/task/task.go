package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeNoteEnrichment computes the summary and sentiment of a note.
	TaskTypeNoteEnrichment = "note_enrichment"
)

// ErrNotRehydrated is returned when a task loaded from the store is executed
// before a factory has turned it back into a runnable task.
var ErrNotRehydrated = errors.New("stored task has no registered factory")

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue tasks for processing
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}

// TaskStore defines the interface for persisting tasks
type TaskStore interface {
	// SaveTask persists a task with its current status
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates the status of a task. Updating an unknown
	// task is a no-op.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks retrieves all tasks with "pending" status, oldest first
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks retrieves tasks with "processing" status
	// If olderThan is non-zero, only returns tasks that have been in this state
	// longer than the specified duration
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)
}

// StoredTask is a task as read back from a TaskStore. It carries the
// persisted data but cannot run until a Factory rebuilds it.
type StoredTask struct {
	TaskID       uuid.UUID
	TaskType     string
	TaskPayload  []byte
	TaskStatus   TaskStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ID returns the task's unique identifier
func (t *StoredTask) ID() uuid.UUID { return t.TaskID }

// Type returns the task type identifier
func (t *StoredTask) Type() string { return t.TaskType }

// Payload returns the task data as a byte slice
func (t *StoredTask) Payload() []byte { return t.TaskPayload }

// Status returns the persisted task status
func (t *StoredTask) Status() TaskStatus { return t.TaskStatus }

// Execute always fails with ErrNotRehydrated.
func (t *StoredTask) Execute(context.Context) error { return ErrNotRehydrated }

// Factory rebuilds a runnable task of one type from its persisted form.
type Factory interface {
	// TaskType returns the task type this factory handles.
	TaskType() string

	// Rehydrate recreates the task with the given ID from its payload.
	Rehydrate(id uuid.UUID, payload []byte) (Task, error)
}
