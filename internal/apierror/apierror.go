// Package apierror provides the error taxonomy shared by services and handlers,
// plus the JSON envelopes returned to clients.
// Internal details (SQL errors, stack traces) never reach a response body:
// only the Msg of a tagged error does, and server errors are always masked.
package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure so callers can decide whether to retry.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindForbidden  Kind = "forbidden"
	KindNetwork    Kind = "network"
	KindServer     Kind = "server"
)

// Error is a tagged error. Msg is safe to show to the user; Err is the cause
// and is only logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Msg: msg} }
func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Msg: msg} }
func Forbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Msg: msg} }

// Network tags a failure talking to a dependency (SMTP, redis).
func Network(msg string, err error) *Error { return &Error{Kind: KindNetwork, Msg: msg, Err: err} }

// Server tags an unexpected failure. Its message is never returned to clients.
func Server(msg string, err error) *Error { return &Error{Kind: KindServer, Msg: msg, Err: err} }

// KindOf returns the kind of the first tagged error in err's chain.
// Untagged errors are server errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// Retryable reports whether the same request may succeed if sent again.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindConflict:
		return true
	}
	return false
}

// Status maps a kind to its HTTP status code.
func Status(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Kind   Kind   `json:"kind,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// From builds the response envelope for err.
func From(err error) *APIError {
	kind := KindOf(err)
	if kind == KindServer {
		return &APIError{Detail: "internal server error", Kind: kind}
	}
	var e *Error
	errors.As(err, &e)
	return &APIError{Detail: e.Msg, Kind: kind}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Kind   Kind              `json:"kind"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Kind: KindValidation, Fields: fields}
}
