package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures into a vendor-neutral taxonomy.
type ErrorKind string

const (
	ErrKindAuth        ErrorKind = "authentication_failed"
	ErrKindModel       ErrorKind = "model_unavailable"
	ErrKindQuota       ErrorKind = "quota_exhausted"
	ErrKindBadRequest  ErrorKind = "bad_request"
	ErrKindNetwork     ErrorKind = "network_error"
	ErrKindConfig      ErrorKind = "configuration_error"
	ErrKindParse       ErrorKind = "parse_error"
	ErrKindUnknown     ErrorKind = "unknown"
)

// Error is the structured error surfaced by every provider adapter.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// FromStatusCode maps an HTTP status family to the error taxonomy.
// 401/403 -> auth, 404 -> model unavailable, 429 -> quota, other 4xx ->
// bad request, 5xx -> network.
func FromStatusCode(status int, message string) *Error {
	var kind ErrorKind
	switch {
	case status == 401 || status == 403:
		kind = ErrKindAuth
	case status == 404:
		kind = ErrKindModel
	case status == 429:
		kind = ErrKindQuota
	case status >= 400 && status < 500:
		kind = ErrKindBadRequest
	case status >= 500 && status < 600:
		kind = ErrKindNetwork
	default:
		kind = ErrKindUnknown
	}
	return &Error{Kind: kind, Message: message, StatusCode: status}
}

// KindOf extracts the ErrorKind from any error chain.
func KindOf(err error) ErrorKind {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}
	return ErrKindUnknown
}
