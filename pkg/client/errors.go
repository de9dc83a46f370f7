package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call.
type Kind string

const (
	// KindTransport covers network failures and server-side or unexpected HTTP errors.
	KindTransport Kind = "transport"
	// KindFormat means the response body did not have the expected shape.
	KindFormat Kind = "format"
	// KindValidation means the backend rejected the request itself.
	KindValidation Kind = "validation"
)

// Sentinels for errors.Is matching on the kind of an *Error.
var (
	ErrTransport  = errors.New("transport error")
	ErrFormat     = errors.New("format error")
	ErrValidation = errors.New("validation error")
)

// Error is returned by every Client call that fails.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s error (HTTP %d): %s", e.Op, e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrFormat:
		return e.Kind == KindFormat
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}

// KindOf returns the kind of err, or "" when err did not come from a Client.
func KindOf(err error) Kind {
	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr.Kind
	}
	return ""
}

func transportError(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

func formatError(op, message string, err error) *Error {
	return &Error{Kind: KindFormat, Op: op, Message: message, Err: err}
}
