package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so the HTTP layer can map them to status codes.
type ErrorKind string

const (
	ErrKindNotFound         ErrorKind = "not_found"
	ErrKindPermissionDenied ErrorKind = "permission_denied"
	ErrKindInvalidState     ErrorKind = "invalid_state"
	ErrKindDuplicate        ErrorKind = "duplicate"
	ErrKindInvalidInput     ErrorKind = "invalid_input"
	ErrKindInternal         ErrorKind = "internal"
)

// DomainError carries the violated precondition by name instead of a generic failure.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on the kind via the sentinel values below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound         = &DomainError{Kind: ErrKindNotFound}
	ErrPermissionDenied = &DomainError{Kind: ErrKindPermissionDenied}
	ErrInvalidState     = &DomainError{Kind: ErrKindInvalidState}
	ErrDuplicate        = &DomainError{Kind: ErrKindDuplicate}
	ErrInvalidInput     = &DomainError{Kind: ErrKindInvalidInput}
	ErrInternal         = &DomainError{Kind: ErrKindInternal}
)

func NotFoundError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: ErrKindNotFound, Message: fmt.Sprintf(format, args...)}
}

func PermissionError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: ErrKindPermissionDenied, Message: fmt.Sprintf(format, args...)}
}

func InvalidStateError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: ErrKindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func DuplicateError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: ErrKindDuplicate, Message: fmt.Sprintf(format, args...)}
}

func InvalidInputError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: ErrKindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// InternalError wraps an unexpected lower-layer failure, preserving the original message.
func InternalError(msg string, err error) *DomainError {
	return &DomainError{Kind: ErrKindInternal, Message: msg, Err: err}
}

// KindOf extracts the error kind, defaulting unexpected errors to internal.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ErrKindInternal
}
