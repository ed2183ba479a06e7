package errors

import (
	"fmt"
)

// Transcription capability and server configuration errors
var (
	// Credential errors, raised while building a provider for a request
	ErrMissingAPIKey = New("transcription credential not configured")
	ErrInvalidAPIKey = New("transcription credential has an invalid format")

	// ErrCapabilityMisconfigured marks a provider that could not be built at
	// all. Requests hitting it are answered 400, not relayed upstream.
	ErrCapabilityMisconfigured = New("transcription capability misconfigured")

	ErrProviderNotFound = New("transcription provider not registered")
	ErrInvalidConfig    = New("invalid server configuration")
)

// Error is a message with an optional cause. Two Errors match under
// errors.Is when their messages are equal.
type Error struct {
	message string
	cause   error
}

// New creates a sentinel
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Mark tags cause with kind, so the result matches both kind and anything
// cause already matches.
func Mark(kind *Error, cause error) error {
	if cause == nil {
		return kind
	}
	return &Error{message: kind.message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return Newf("%s is invalid: %s", field, reason)
}

// OutOfRange returns an error for values outside acceptable range
func OutOfRange(field string, min, max interface{}) error {
	return Newf("%s out of range (must be between %v and %v)", field, min, max)
}
