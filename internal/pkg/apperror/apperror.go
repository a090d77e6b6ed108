// Package apperror defines the error kinds the service surfaces to callers.
// Modules declare sentinel errors with New and attach the failed precondition
// with Wrapf, so errors.Is keeps matching the sentinel.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation  Kind = "validation"
	KindConflict    Kind = "conflict"
	KindState       Kind = "state"
	KindConcurrency Kind = "concurrency"
	KindNotFound    Kind = "not_found"
	KindInternal    Kind = "internal"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string { return e.Message }

// Wrapf returns base annotated with a formatted detail.
func Wrapf(base *Error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", base, fmt.Sprintf(format, args...))
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL_ERROR"
}

// Retryable reports whether the caller may retry the operation with backoff.
func Retryable(err error) bool {
	return KindOf(err) == KindConcurrency
}
