package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorTypes(t *testing.T) {
	cause := errors.New("connection refused")

	err := Backend("torrentio", cause)
	assert.True(t, IsBackend(err))
	assert.False(t, IsRanking(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "BACKEND: backend torrentio failed: connection refused", err.Error())

	wrapped := fmt.Errorf("submit: %w", Ranking("Heat (1995)", cause))
	assert.True(t, IsRanking(wrapped))
	assert.Equal(t, ErrorTypeRanking, TypeOf(wrapped))

	assert.True(t, IsNotFound(NotFound("item")))
	assert.True(t, IsBadRequest(BadRequest("bad")))
	assert.True(t, IsInternal(Internal("boom")))
	assert.Equal(t, ErrorType(""), TypeOf(cause))
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.False(t, IsTimeout(context.Canceled))
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(errors.New("UNIQUE constraint failed: scrape_attempts.id")))
	assert.False(t, IsDuplicateError(nil))
}
