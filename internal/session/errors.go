package session

import (
	"errors"
	"fmt"
)

// MsgFileRequired is shown when analysis is started without a file
const MsgFileRequired = "A log file is required."

// ErrClosed is returned by commands issued after Close
var ErrClosed = errors.New("session closed")

// ValidationError is a local input error that never reaches the network
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// String describes the failing field for logs
func (e *ValidationError) String() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
