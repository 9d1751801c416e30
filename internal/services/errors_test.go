package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/anonto42/nano-comments/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	cause := errors.New("connection refused")
	err := unavailable("Failed to load post", cause)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to load post: connection refused", err.Error())
	assert.Equal(t, "Failed to load post", Message(err, "fallback"))
	assert.Equal(t, "fallback", Message(cause, "fallback"))
}

func TestLookupError(t *testing.T) {
	err := lookupError(fmt.Errorf("wrapped: %w", repositories.ErrNotFound), "Post not found", "Failed")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Post not found", Message(err, ""))

	err = lookupError(errors.New("boom"), "Post not found", "Failed")
	assert.ErrorIs(t, err, ErrUnavailable)
}
