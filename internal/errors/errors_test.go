package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewInternalError("save batch", fmt.Errorf("disk full"))
	assert.Equal(t, "INTERNAL_ERROR: save batch (disk full)", err.Error())

	err = NewNotFoundError("batch abc")
	assert.Equal(t, "NOT_FOUND: batch abc not found", err.Error())
}

func TestCodeOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("aggregate: %w", NewMalformedRecordError("end before start"))

	assert.Equal(t, ErrCodeMalformedRecord, CodeOf(wrapped))
	assert.True(t, IsMalformedRecord(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.Equal(t, ErrCode(""), CodeOf(fmt.Errorf("plain")))
}

func TestNewValidationErrorJoinsProblems(t *testing.T) {
	err := NewValidationError([]string{"entry 1: comments may not be empty", "entry 3: unknown customer \"x\""})

	assert.True(t, IsValidation(err))
	assert.Equal(t, `entry 1: comments may not be empty; entry 3: unknown customer "x"`, err.Message)
}
