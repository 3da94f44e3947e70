package types

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKindMatching(t *testing.T) {
	err := Errorf(ErrKindNotFound, "stream %q", "GameData")
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrStructural)
	assert.True(t, IsKind(err, ErrKindNotFound))
	assert.Equal(t, `stream "GameData"`, err.Error())

	wrapped := fmt.Errorf("open table: %w", err)
	assert.True(t, IsKind(wrapped, ErrKindNotFound))
	assert.False(t, IsKind(wrapped, ErrKindIO))
	assert.False(t, IsKind(io.EOF, ErrKindIO))
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrKindIO, "read sector 7", io.ErrUnexpectedEOF)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.ErrorIs(t, err, ErrIO)
	assert.Equal(t, "read sector 7: unexpected EOF", err.Error())
}

func TestNilError(t *testing.T) {
	var e *Error
	assert.Equal(t, "<nil>", e.Error())
	assert.False(t, errors.Is(e, ErrNotFound))
}

func TestSteps(t *testing.T) {
	assert.Equal(t, Step{Kind: StepConsumed, N: 12}, Consumed(12))
	assert.Equal(t, Step{Kind: StepNeedMore, N: 3}, NeedMore(3))
	assert.Equal(t, StepDone, Done().Kind)
	assert.Equal(t, "need-more(3)", NeedMore(3).String())
	assert.Equal(t, "done", Done().String())
}
