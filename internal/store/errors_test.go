package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(ErrNoteNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", ErrNoteNotFound)))
	assert.False(t, IsNotFoundError(ErrDuplicate))
	assert.False(t, IsNotFoundError(nil))
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(ErrDuplicate))
	assert.True(t, IsDuplicateError(fmt.Errorf("insert: %w", ErrDuplicate)))
	assert.False(t, IsDuplicateError(ErrNoteNotFound))
}

func TestStoreError(t *testing.T) {
	cause := errors.New("disk full")

	err := NewStoreError("note", "create", "insert failed", cause)
	assert.Equal(t, "create operation on note failed: insert failed: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("task", "update", "no rows", nil)
	assert.Equal(t, "update operation on task failed: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())

	wrapped := NewStoreError("note", "get", "lookup failed", ErrNoteNotFound)
	assert.True(t, IsNotFoundError(wrapped))
}
