package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodedErrors(t *testing.T) {
	t.Run("new carries code and message", func(t *testing.T) {
		err := New(CodeForbidden, "not the project owner")
		assert.True(t, HasCode(err, CodeForbidden))
		assert.False(t, HasCode(err, CodeNotFound))
		assert.Equal(t, "forbidden: not the project owner", err.Error())
	})

	t.Run("wrap keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeStoreUnavailable, "failed to load project")
		require.ErrorIs(t, err, cause)
		assert.Equal(t, CodeStoreUnavailable, CodeOf(err))
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("register: %w", New(CodeAlreadyRegistered, "already registered"))
		assert.True(t, Is(err, CodeAlreadyRegistered))
	})

	t.Run("uncoded errors default to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}
