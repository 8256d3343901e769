package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/notes-api/internal/config"
	"github.com/phrazzld/notes-api/internal/platform/sqlstore"
	"github.com/phrazzld/notes-api/internal/redact"
)

// openDatabase connects to the configured database.
func openDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*sql.DB, sqlstore.Dialect, error) {
	pool := sqlstore.DefaultPoolConfig()
	pool.MaxOpenConns = cfg.Database.MaxOpenConns
	if pool.MaxIdleConns > pool.MaxOpenConns {
		pool.MaxIdleConns = pool.MaxOpenConns
	}

	db, dialect, err := sqlstore.Open(ctx, cfg.Database.URL, pool, log)
	if err != nil {
		log.Error("failed to open database", "error", redact.Error(err))
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	log.Info("database connection established", "dialect", string(dialect))
	return db, dialect, nil
}
