package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel *DomainError
		kind     ErrorKind
	}{
		{NotFoundError("form %s not found", "x"), ErrNotFound, ErrKindNotFound},
		{PermissionError("no"), ErrPermissionDenied, ErrKindPermissionDenied},
		{InvalidStateError("wrong state"), ErrInvalidState, ErrKindInvalidState},
		{DuplicateError("already there"), ErrDuplicate, ErrKindDuplicate},
		{InvalidInputError("bad value %d", 7), ErrInvalidInput, ErrKindInvalidInput},
		{InternalError("db broke", errors.New("boom")), ErrInternal, ErrKindInternal},
	}

	for _, c := range cases {
		assert.ErrorIs(t, c.err, c.sentinel)
		assert.Equal(t, c.kind, KindOf(c.err))
	}

	// Kinds never cross-match.
	assert.NotErrorIs(t, NotFoundError("x"), ErrInvalidState)
}

func TestDomainErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := InternalError("failed to fetch forms", cause)

	// The original failure stays reachable through the chain.
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to fetch forms")
	assert.Contains(t, err.Error(), "connection refused")

	wrapped := fmt.Errorf("handler: %w", err)
	assert.Equal(t, ErrKindInternal, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, ErrInternal)
}

func TestKindOfUnknownError(t *testing.T) {
	assert.Equal(t, ErrKindInternal, KindOf(errors.New("plain")))
}
