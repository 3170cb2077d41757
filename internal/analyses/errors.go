package analyses

import (
	"errors"
	"net/http"
)

// ErrNotFound is returned by repositories when no record matches.
var ErrNotFound = errors.New("analysis not found")

// Kind classifies failures surfaced by the Service.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindProvider      Kind = "provider"
	KindPersistence   Kind = "persistence"
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
)

// Error is a classified failure. Message is safe to show to users.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of err, or KindPersistence for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return KindPersistence
}

// HTTPStatus maps a Kind onto a response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindConfiguration:
		return http.StatusServiceUnavailable
	case KindProvider:
		return http.StatusBadGateway
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
