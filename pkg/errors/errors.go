// Package errors defines the sentinel errors shared across the search
// service, plus a thin wrapping type that carries a human-readable message
// alongside the sentinel for errors.Is matching.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotReady          = errors.New("search index not ready")
	ErrEmptyQuery        = errors.New("empty query")
	ErrInvalidDocument   = errors.New("invalid document")
	ErrCorpusUnavailable = errors.New("corpus unavailable")
)

// AppError pairs a sentinel error with a contextual message.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps a sentinel with a message.
func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

// Newf wraps a sentinel with a formatted message.
func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}
