package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_UpDownSQLite(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	version, err := CurrentVersion(ctx, db, DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// up is idempotent
	require.NoError(t, Migrate(ctx, db, DialectSQLite, MigrateUp, testLogger()))
	require.NoError(t, Migrate(ctx, db, DialectSQLite, MigrateStatus, testLogger()))

	require.NoError(t, Migrate(ctx, db, DialectSQLite, MigrateDown, testLogger()))
	version, err = CurrentVersion(ctx, db, DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	_, err = db.ExecContext(ctx, `SELECT id FROM tasks`)
	assert.Error(t, err)

	require.NoError(t, Migrate(ctx, db, DialectSQLite, MigrateReset, testLogger()))
	version, err = CurrentVersion(ctx, db, DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
}

func TestMigrate_UnknownCommand(t *testing.T) {
	db := openTestDB(t)

	err := Migrate(context.Background(), db, DialectSQLite, "sideways", testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}

func TestMigrationFilesEmbedded(t *testing.T) {
	for _, d := range []Dialect{DialectPostgres, DialectSQLite} {
		entries, err := migrationsFS.ReadDir(d.migrationsDir())
		require.NoError(t, err)
		assert.Len(t, entries, 2, string(d))
	}
}
