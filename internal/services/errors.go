package services

import (
	"errors"

	"github.com/anonto42/nano-comments/backend/internal/repositories"
)

// Error kinds. Match them with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnavailable     = errors.New("unavailable")
)

// Error is a failure of a service operation that can be shown to the caller.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func notFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

func invalidArgument(msg string) error {
	return &Error{Kind: ErrInvalidArgument, Message: msg}
}

func unavailable(msg string, err error) error {
	return &Error{Kind: ErrUnavailable, Message: msg, Err: err}
}

// lookupError turns a repository lookup failure into NotFound or Unavailable.
func lookupError(err error, notFoundMsg, failMsg string) error {
	if isNotFound(err) {
		return notFound(notFoundMsg)
	}
	return unavailable(failMsg, err)
}

// Message returns the client-facing message of err, or fallback when err is not a service error.
func Message(err error, fallback string) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return fallback
}

func isNotFound(err error) bool {
	return repositories.IsNotFound(err)
}
