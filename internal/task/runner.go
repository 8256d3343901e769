package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/notes-api/internal/platform/logger"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner persists submitted tasks, queues them and runs them on a
// bounded worker pool. Unfinished tasks are recovered from the store on
// start, and tasks stuck in processing are periodically re-queued.
type TaskRunner struct {
	store  TaskStore
	queue  *TaskQueue
	pool   *WorkerPool
	config TaskRunnerConfig
	logger *slog.Logger

	factoriesMu sync.RWMutex
	factories   map[string]Factory

	errHandler func(task Task, err error)

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval <= 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}
	logger = logger.With("component", "task_runner")

	ctx, cancel := context.WithCancel(context.Background())

	r := &TaskRunner{
		store:      store,
		queue:      NewTaskQueue(config.QueueSize, logger),
		config:     config,
		logger:     logger,
		factories:  make(map[string]Factory),
		ctx:        ctx,
		cancelFunc: cancel,
	}
	r.errHandler = func(task Task, err error) {
		logger.Error("task execution failed",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"error", err)
	}
	r.pool = NewWorkerPool(r.queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, r.processTask, logger)
	return r
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// RegisterFactory makes tasks of f.TaskType() recoverable from the store.
func (r *TaskRunner) RegisterFactory(f Factory) {
	r.factoriesMu.Lock()
	defer r.factoriesMu.Unlock()
	r.factories[f.TaskType()] = f
}

// Submit persists task and adds it to the queue. When the queue is full the
// task is marked failed and an error wrapping ErrQueueFull is returned.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	err := r.queue.Enqueue(task)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrQueueFull):
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			r.logger.Error("failed to mark rejected task as failed",
				"task_id", task.ID(),
				"error", updateErr)
		}
		return fmt.Errorf("task %s rejected: %w", task.ID(), err)
	default:
		// Closed queue: the task stays pending and is recovered on next start.
		return fmt.Errorf("task %s not queued: %w", task.ID(), err)
	}
}

// Start recovers unfinished tasks, then starts the workers and the stuck
// task monitor.
func (r *TaskRunner) Start(ctx context.Context) error {
	if err := r.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	r.pool.Start()

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop gracefully shuts down the task runner. In-flight tasks complete;
// tasks still queued remain pending in the store.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.cancelFunc()
		r.wg.Wait()
		r.pool.Stop()
		r.queue.Close()
	})
}

// Recover loads unfinished tasks from the store and queues them again.
// Tasks found in processing state were interrupted and are reset to pending.
func (r *TaskRunner) Recover(ctx context.Context) error {
	pendingTasks, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processingTasks, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pendingTasks),
		"processing_count", len(processingTasks))

	r.requeue(ctx, pendingTasks, "")
	r.requeue(ctx, processingTasks, "reset after recovery")
	return nil
}

// requeue rebuilds stored tasks and puts them back on the queue. A non-empty
// resetReason first moves each task back to pending.
func (r *TaskRunner) requeue(ctx context.Context, stored []Task, resetReason string) {
	for _, st := range stored {
		log := r.logger.With("task_id", st.ID(), "task_type", st.Type())

		runnable, err := r.rehydrate(st)
		if err != nil {
			log.Error("cannot rebuild stored task", "error", err)
			if updateErr := r.store.UpdateTaskStatus(ctx, st.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
				log.Error("failed to mark unrecoverable task as failed", "error", updateErr)
			}
			continue
		}

		if resetReason != "" {
			if err := r.store.UpdateTaskStatus(ctx, st.ID(), TaskStatusPending, resetReason); err != nil {
				log.Error("failed to reset task status", "error", err)
				continue
			}
		}

		if err := r.queue.Enqueue(runnable); err != nil {
			log.Error("failed to requeue task, it stays pending", "error", err)
			continue
		}
		log.Debug("task requeued")
	}
}

func (r *TaskRunner) rehydrate(t Task) (Task, error) {
	if _, ok := t.(*StoredTask); !ok {
		return t, nil
	}

	r.factoriesMu.RLock()
	f, ok := r.factories[t.Type()]
	r.factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRehydrated, t.Type())
	}
	return f.Rehydrate(t.ID(), t.Payload())
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(ctx context.Context, task Task, workerID int) {
	log := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)
	ctx = logger.WithLogger(ctx, log)

	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		log.Error("failed to update task status to processing", "error", err)
		return
	}

	log.Info("processing task")
	start := time.Now()

	if err := r.execute(ctx, task); err != nil {
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to update task status to failed", "error", updateErr)
		}
		r.errHandler(task, err)
		return
	}

	log.Info("task completed successfully", "duration_ms", time.Since(start).Milliseconds())
	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusCompleted, ""); err != nil {
		log.Error("failed to update task status to completed", "error", err)
	}
}

// execute runs the task and converts a panic into an error.
func (r *TaskRunner) execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	return task.Execute(ctx)
}

// stuckTaskMonitor periodically checks for tasks that have been in "processing"
// state for too long and resets them
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.resetStuckTasks(r.ctx)
		}
	}
}

func (r *TaskRunner) resetStuckTasks(ctx context.Context) {
	stuckTasks, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
	if err != nil {
		r.logger.Error("failed to check for stuck tasks", "error", err)
		return
	}
	if len(stuckTasks) == 0 {
		return
	}

	r.logger.Info("found stuck tasks", "count", len(stuckTasks))
	r.requeue(ctx, stuckTasks, "reset after being stuck in processing state")
}
