// Package apperr defines the error kinds returned by the scaffold and
// build-part services. Callers classify errors with errors.Is against the
// sentinel kinds; storage faults are never wrapped in one of these kinds.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error carries a kind plus the resource or reason shown to clients.
type Error struct {
	Kind     error
	Resource string
	Message  string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Resource != "" {
		return fmt.Sprintf("%s %s", e.Resource, e.Kind)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

// NotFound reports that resource does not exist, or does not belong to the
// build it was addressed under.
func NotFound(resource string) error {
	return &Error{Kind: ErrNotFound, Resource: resource}
}

// Invalid reports a malformed or semantically invalid request.
func Invalid(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports that the caller may not act on a resource.
func Unauthorized(resource string) error {
	return &Error{Kind: ErrUnauthorized, Resource: resource, Message: "not allowed to modify " + resource}
}

// IsNotFound is shorthand for errors.Is(err, ErrNotFound).
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalid is shorthand for errors.Is(err, ErrInvalidInput).
func IsInvalid(err error) bool { return errors.Is(err, ErrInvalidInput) }
