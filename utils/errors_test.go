package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeThroughWrapping(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("create letter: %w", StorageError("Failed to save letter", cause))

	assert.Equal(t, 500, ErrorCode(err))
	assert.Equal(t, "Failed to save letter", PublicMessage(err))
	assert.ErrorIs(t, err, cause)
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NotFoundError("Letter not found", nil)))
	assert.True(t, IsValidation(ValidationError("Sender name is required", nil)))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsValidation(nil))
	assert.Equal(t, 500, ErrorCode(errors.New("plain")))
	assert.Equal(t, "Something went wrong", PublicMessage(errors.New("secret detail")))
}

func TestAppErrorMessage(t *testing.T) {
	assert.Equal(t, "Letter not found", NotFoundError("Letter not found", nil).Error())
	assert.Equal(t, "Failed to save letter: boom", StorageError("Failed to save letter", errors.New("boom")).Error())
}
