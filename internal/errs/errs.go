// Package errs defines the error taxonomy shared by the REST and WebSocket
// surfaces: every failure is classified by Kind and carries one message, so
// both transports render the same envelope.
package errs

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindPermission     Kind = "permission"
	KindValidation     Kind = "validation"
	KindPersistence    Kind = "persistence"
	KindNotFound       Kind = "not_found"
)

type Error struct {
	Kind      Kind
	Message   string
	Retryable bool
	err       error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

func Authentication(message string) error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func Permission(message string) error {
	return &Error{Kind: KindPermission, Message: message}
}

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Persistence(message string, err error) error {
	return &Error{Kind: KindPersistence, Message: message, err: err}
}

// FromStore classifies an error returned by a repository call. Deadline and
// cancellation errors become retryable persistence failures; a missing row
// becomes NotFound.
func FromStore(message string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Message: message, err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindPersistence, Message: message, Retryable: true, err: err}
	}
	return &Error{Kind: KindPersistence, Message: message, err: err}
}

// KindOf returns the Kind of a classified error, or KindPersistence for
// anything unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// Retryable reports whether the caller may safely retry the failed operation.
func Retryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
