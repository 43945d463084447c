package model

import (
	"errors"
	"fmt"
)

// Error kinds shared by the store, the registry and the HTTP layer.  Callers
// classify failures with errors.Is; anything that matches none of these is an
// internal failure and must not be described to the client.
var (
	// ErrInvalidInput covers missing or malformed fields, bad date order and
	// CPF checksum failures.  Handlers translate it into HTTP 400.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is returned when a unique constraint rejects a write, e.g.
	// a second guest with the same CPF.  Handlers translate it into HTTP 409.
	ErrConflict = errors.New("conflict")
	// ErrNotFound is returned for unknown guest, stay or admin ids.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized covers bad credentials and any session token failure.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error pairs an error kind with a message that is safe to show to the
// caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds an *Error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Message returns the caller-facing message for err, falling back to the
// kind's own text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	for _, kind := range []error{ErrInvalidInput, ErrConflict, ErrNotFound, ErrUnauthorized} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal server error"
}
