package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/notes-api/internal/store"
	"github.com/stretchr/testify/assert"
)

// codedError mimics a SQLite driver error exposing its result code.
type codedError struct{ code int }

func (e codedError) Error() string { return fmt.Sprintf("sqlite error %d", e.code) }
func (e codedError) Code() int { return e.code }

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"pg unique", &pgconn.PgError{Code: uniqueViolationCode}, store.ErrDuplicate},
		{"pg check", &pgconn.PgError{Code: checkViolationCode, ConstraintName: "notes_title_check"}, store.ErrInvalidEntity},
		{"pg not null", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "title"}, store.ErrInvalidEntity},
		{"sqlite unique", codedError{sqliteConstraintUnique}, store.ErrDuplicate},
		{"sqlite primary key", codedError{sqliteConstraintPrimaryKey}, store.ErrDuplicate},
		{"sqlite check", codedError{sqliteConstraintCheck}, store.ErrInvalidEntity},
		{"sqlite not null", codedError{sqliteConstraintNotNull}, store.ErrInvalidEntity},
		{"message fallback", errors.New("constraint failed: UNIQUE constraint failed: tasks.id (1555)"), store.ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapError(fmt.Errorf("wrapped: %w", tt.err))
			assert.ErrorIs(t, mapped, tt.want)
		})
	}
}

func TestMapError_Passthrough(t *testing.T) {
	assert.NoError(t, MapError(nil))

	plain := errors.New("connection reset")
	assert.Same(t, plain, MapError(plain))

	pgOther := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(pgOther), MapError(pgOther))

	assert.False(t, IsUniqueViolation(plain))
	assert.True(t, IsUniqueViolation(codedError{sqliteConstraintUnique}))
}
