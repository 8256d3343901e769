package testdb

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/notes-api/internal/platform/sqlstore"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds the setup work done by Open.
const TestTimeout = 5 * time.Second

// URLEnvVar names the environment variable that overrides the test database.
const URLEnvVar = "NOTES_TEST_DATABASE_URL"

// DefaultURL is used when URLEnvVar is unset: a private in-memory SQLite database.
const DefaultURL = "sqlite://"

// GetTestDatabaseURL returns the database URL tests should connect to.
func GetTestDatabaseURL() string {
	if url := os.Getenv(URLEnvVar); url != "" {
		return url
	}
	return DefaultURL
}

// IsExternal reports whether tests run against a database configured via
// URLEnvVar rather than the in-memory default.
func IsExternal() bool {
	return os.Getenv(URLEnvVar) != ""
}

// Open returns a migrated database and its dialect. The connection is closed
// when the test ends.
func Open(t *testing.T) (*sql.DB, sqlstore.Dialect) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, dialect, err := sqlstore.Open(ctx, GetTestDatabaseURL(), sqlstore.DefaultPoolConfig(), log)
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { CleanupDB(t, db) })

	require.NoError(t, sqlstore.Migrate(ctx, db, dialect, sqlstore.MigrateUp, log), "Failed to run migrations")

	if IsExternal() {
		Truncate(t, db)
	}
	return db, dialect
}

// Truncate removes every row from the notes and tasks tables.
func Truncate(t *testing.T, db *sql.DB) {
	t.Helper()

	for _, table := range []string{"tasks", "notes"} {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err, "Failed to empty table %s", table)
	}
}

// WithTx runs fn inside a transaction that is rolled back afterwards.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		// sql.ErrTxDone is expected if fn already committed or rolled back
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// CleanupDB closes db, logging any error.
func CleanupDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		t.Logf("Warning: failed to close database connection: %v", err)
	}
}
