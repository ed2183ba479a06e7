package errors

import (
	"net/http"

	"voice-interview/internal/app/api/provider"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindBadRequest         ErrorKind = "bad_request"
	KindNotFound           ErrorKind = "not_found"
	KindPayloadTooLarge    ErrorKind = "payload_too_large"
	KindUpstream           ErrorKind = "upstream"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
)

// Summaries used in the "error" field of response bodies
const (
	SummaryTranscription = "Transcription error"
	SummaryServer        = "Server error"
)

// APIError is the JSON error body returned by the API:
//
//	{"error": "...", "status": 429, "code": "...", "message": "...", "details": "..."}
//
// Only "error" is always present.
type APIError struct {
	Kind      ErrorKind `json:"-"`
	Summary   string    `json:"error"`
	Status    int       `json:"status,omitempty"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message,omitempty"`
	Details   string    `json:"details,omitempty"`
	RequestID string    `json:"request_id,omitempty"`

	// httpStatus overrides the kind mapping
	httpStatus int
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Summary + ": " + e.Message
	}
	if e.Details != "" {
		return e.Summary + ": " + e.Details
	}
	return e.Summary
}

// HTTPStatus returns the HTTP status code for the error
func (e *APIError) HTTPStatus() int {
	if e.httpStatus != 0 {
		return e.httpStatus
	}

	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Summary: message,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Summary: message,
	}
}

// NewPayloadTooLargeError creates an error for an upload over the limit
func NewPayloadTooLargeError(message string) *APIError {
	return &APIError{
		Kind:    KindPayloadTooLarge,
		Summary: message,
	}
}

// NewServiceUnavailableError creates a service unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Kind:    KindServiceUnavailable,
		Summary: message,
	}
}

// NewInternalError creates a "Server error" body carrying err's text
func NewInternalError(err error) *APIError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &APIError{
		Kind:    KindInternal,
		Summary: SummaryServer,
		Details: details,
	}
}

// NewTranscriptionError relays a failed capability call. The response
// status follows the upstream one, defaulting to 500.
func NewTranscriptionError(svcErr *provider.TranscriptionServiceError) *APIError {
	return &APIError{
		Kind:       KindUpstream,
		Summary:    SummaryTranscription,
		Status:     svcErr.Status,
		Code:       svcErr.Code,
		Message:    svcErr.Message,
		httpStatus: svcErr.HTTPStatus(),
	}
}

// WrapError converts any error into an APIError. APIErrors pass through,
// capability failures are relayed, everything else becomes a server error.
func WrapError(err error) *APIError {
	if err == nil {
		return nil
	}

	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	if svcErr, ok := provider.AsServiceError(err); ok {
		return NewTranscriptionError(svcErr)
	}
	return NewInternalError(err)
}
