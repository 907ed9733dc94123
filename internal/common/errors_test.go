package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorUnwrap(t *testing.T) {
	err := NewAppError(CodeStoreError, "write job record", ErrStore)
	assert.Equal(t, CodeStoreError, err.Code)
	assert.ErrorIs(t, err, ErrStore)
	assert.Contains(t, err.Error(), "write job record")
}

func TestWrapError(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(cause, "persist metrics")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestAsAppError(t *testing.T) {
	appErr := NewAppError(CodeProcessingFailure, "boom", nil)
	assert.Same(t, appErr, AsAppError(appErr))

	wrapped := AsAppError(errors.New("plain"))
	require.NotNil(t, wrapped)
	assert.Equal(t, CodeProcessingFailure, wrapped.Code)
}
