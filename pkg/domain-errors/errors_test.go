package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intervalErr struct{}

func (intervalErr) Error() string   { return "bad interval" }
func (intervalErr) ErrorCode() Code { return CodeInvalidInterval }

func TestHasCode(t *testing.T) {
	t.Run("direct code", func(t *testing.T) {
		err := New(CodeNotFound, "person not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("code found through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("load: %w", New(CodeNotFound, "missing"))
		assert.True(t, HasCode(err, CodeNotFound))
	})

	t.Run("inner code found below outer code", func(t *testing.T) {
		err := Wrap(intervalErr{}, CodeValidation, "invalid request")
		assert.True(t, HasCode(err, CodeValidation))
		assert.True(t, HasCode(err, CodeInvalidInterval))
		assert.Equal(t, CodeValidation, CodeOf(err))
	})

	t.Run("joined errors", func(t *testing.T) {
		err := errors.Join(errors.New("plain"), New(CodeTimeout, "slow"))
		assert.True(t, HasCode(err, CodeTimeout))
	})

	t.Run("plain error has no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestWrap(t *testing.T) {
	require.NoError(t, Wrap(nil, CodeInternal, "ignored"))

	base := errors.New("db down")
	err := Wrap(base, CodeInternal, "failed to save person")
	require.ErrorIs(t, err, base)
	assert.Equal(t, "failed to save person: db down", err.Error())
}
