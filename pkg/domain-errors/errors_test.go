package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeNotFound, "work order missing")
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}

func TestHasCodeThroughWrapping(t *testing.T) {
	inner := New(CodeInvalidState, "insufficient stock")
	outer := fmt.Errorf("allocate: %w", inner)
	assert.True(t, HasCode(outer, CodeInvalidState))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load inventory")
	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestIsComparesCodeAndMessage(t *testing.T) {
	err := New(CodeConflict, "quality check already exists for this work order")
	require.ErrorIs(t, err, New(CodeConflict, "quality check already exists for this work order"))
	assert.NotErrorIs(t, err, New(CodeConflict, "different message"))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}
