package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/notes-api/internal/config"
	"github.com/phrazzld/notes-api/internal/enrich"
	"github.com/phrazzld/notes-api/internal/events"
	"github.com/phrazzld/notes-api/internal/platform/gemini"
	"github.com/phrazzld/notes-api/internal/platform/sqlstore"
	"github.com/phrazzld/notes-api/internal/service"
	"github.com/phrazzld/notes-api/internal/store"
	"github.com/phrazzld/notes-api/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	noteStore store.NoteStore
	taskStore task.TaskStore

	// Enrichment
	enricher *enrich.Pipeline

	// Service interfaces
	noteService service.NoteService

	// Event system
	eventEmitter *events.InMemoryEmitter

	// Task handling
	taskRunner *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies
// initialized and the task runner started. The database must already be
// migrated. provider computes the enrichment fields of new notes.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	dialect sqlstore.Dialect,
	provider enrich.Provider,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize stores
	noteStore := sqlstore.NewNoteStore(db, dialect, logger)
	app.noteStore = noteStore
	app.taskStore = sqlstore.NewTaskStore(db, dialect, logger)

	// Enrichment pipeline
	app.enricher = enrich.NewPipeline(provider, enrich.PipelineConfig{
		Timeout:         cfg.Enrichment.Timeout,
		SummaryMaxChars: cfg.Enrichment.SummaryMaxChars,
		CacheSize:       cfg.Enrichment.CacheSize,
	}, logger)

	// Task runner with the enrichment task registered for recovery
	factory := task.NewEnrichmentTaskFactory(app.enricher, noteStore, logger)
	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
	}, logger)
	app.taskRunner.RegisterFactory(factory)

	// Event emitter feeding new notes to the task runner
	app.eventEmitter = events.NewInMemoryEmitter(logger)
	app.eventEmitter.RegisterHandler(task.NewEnrichmentEventHandler(factory, app.taskRunner, logger))

	var err error
	app.noteService, err = service.NewNoteService(noteStore, db, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create note service: %w", err)
	}

	if err := app.taskRunner.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	logger.Info("application initialized",
		"dialect", string(dialect),
		"worker_count", cfg.Task.WorkerCount,
		"queue_size", cfg.Task.QueueSize)
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Stop task runner; tasks still queued stay pending and are recovered
	// on the next start.
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	// Close database connection
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}

// newEnrichmentProvider selects the enrichment backend from configuration.
// Gemini is initialised lazily on the first enrichment so startup never
// waits on the remote API.
func newEnrichmentProvider(cfg *config.Config, logger *slog.Logger) enrich.Provider {
	provider := cfg.Enrichment.Provider
	if provider == "auto" {
		provider = "none"
		if cfg.LLM.GeminiAPIKey != "" {
			provider = "gemini"
		}
	}

	switch provider {
	case "gemini":
		logger.Info("using gemini enrichment provider", "model", cfg.LLM.ModelName)
		return enrich.NewLazyProvider(func(ctx context.Context) (enrich.Provider, error) {
			return gemini.New(ctx, cfg.LLM, logger)
		}, logger)
	default:
		logger.Info("enrichment provider disabled, notes stay un-enriched")
		return enrich.NoopProvider{}
	}
}
