package api

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes a failed backend call
type ErrorKind string

const (
	// ErrTypeTransport indicates the request never produced an HTTP response
	ErrTypeTransport ErrorKind = "transport"

	// ErrTypeServer indicates a non-2xx response
	ErrTypeServer ErrorKind = "server"

	// ErrTypeDecode indicates a 2xx response whose body could not be decoded
	ErrTypeDecode ErrorKind = "decode"
)

// Op names a backend operation
type Op string

const (
	OpUpload  Op = "upload"
	OpSummary Op = "summary"
	OpQuery   Op = "query"
)

// Fallback messages surfaced when the server supplies no detail.
const (
	FallbackUpload  = "An unexpected error occurred during file upload."
	FallbackSummary = "Failed to fetch summary."
	FallbackQuery   = "An error occurred while getting the chat response."
)

// Fallback returns the fixed user-facing message for an operation.
func Fallback(op Op) string {
	switch op {
	case OpUpload:
		return FallbackUpload
	case OpSummary:
		return FallbackSummary
	case OpQuery:
		return FallbackQuery
	default:
		return "Request failed."
	}
}

// Error is the single error type returned by every Client operation.
// Error() yields only the human-readable message so it can be shown as is.
type Error struct {
	// Type categorizes the failure
	Type ErrorKind `json:"type"`

	// Op is the operation that failed
	Op Op `json:"op"`

	// StatusCode is set for server errors
	StatusCode int `json:"status_code,omitempty"`

	// Message is the server detail or the operation fallback
	Message string `json:"message"`

	// Underlying error, if any
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same type
func (e *Error) Is(target error) bool {
	if te, ok := target.(*Error); ok {
		return e.Type == te.Type
	}
	return false
}

// Detail describes the error for logs, including the cause.
func (e *Error) Detail() string {
	s := fmt.Sprintf("op=%s type=%s", e.Op, e.Type)
	if e.StatusCode > 0 {
		s += fmt.Sprintf(" status=%d", e.StatusCode)
	}
	s += ": " + e.Message
	if e.Cause != nil {
		s += ": cause=" + e.Cause.Error()
	}
	return s
}

func newTransportError(op Op, cause error) *Error {
	return &Error{Type: ErrTypeTransport, Op: op, Message: Fallback(op), Cause: cause}
}

func newServerError(op Op, status int, detail string) *Error {
	msg := detail
	if msg == "" {
		msg = Fallback(op)
	}
	return &Error{Type: ErrTypeServer, Op: op, StatusCode: status, Message: msg}
}

func newDecodeError(op Op, cause error) *Error {
	return &Error{Type: ErrTypeDecode, Op: op, Message: Fallback(op), Cause: cause}
}

// IsServerError reports whether err is a non-2xx backend response.
func IsServerError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrTypeServer
}

// Message extracts the user-facing message from any error. Non-API errors
// fall back to the operation's fixed message.
func Message(err error, op Op) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return Fallback(op)
}
