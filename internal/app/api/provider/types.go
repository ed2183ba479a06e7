package provider

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "voice-interview/internal/app/errors"
)

// Error codes reported in TranscriptionServiceError.Code
const (
	CodeMissingAPIKey        = "missing_api_key"
	CodeAuthenticationFailed = "authentication_failed"
	CodeRateLimitExceeded    = "rate_limit_exceeded"
	CodeFileTooLarge         = "file_too_large"
	CodeInvalidFile          = "invalid_file"
	CodeAPIError             = "api_error"
	CodeUnknown              = "unknown_error"
)

// TranscriptionServiceError is an upstream transcription failure. Status is
// the upstream HTTP status, or zero when the upstream gave none.
type TranscriptionServiceError struct {
	Status    int    `json:"status,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	Provider  string `json:"provider,omitempty"`
	Retryable bool   `json:"retryable"`
	cause     error
}

func (e *TranscriptionServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s transcription failed (%d %s): %s", e.Provider, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s transcription failed (%s): %s", e.Provider, e.Code, e.Message)
}

func (e *TranscriptionServiceError) Unwrap() error {
	return e.cause
}

// HTTPStatus is the status to report to clients: the upstream status when
// known, otherwise 500.
func (e *TranscriptionServiceError) HTTPStatus() int {
	if e.Status >= 400 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Misconfigured reports whether the capability could not be called at all
// because its configuration is incomplete.
func (e *TranscriptionServiceError) Misconfigured() bool {
	return e.Code == CodeMissingAPIKey
}

// NewMisconfiguredError reports a capability that cannot be built, such as a
// missing credential. It is a client error (400).
func NewMisconfiguredError(providerName string, err error) *TranscriptionServiceError {
	return &TranscriptionServiceError{
		Status:    http.StatusBadRequest,
		Code:      CodeMissingAPIKey,
		Message:   err.Error(),
		Provider:  providerName,
		Retryable: false,
		cause:     apperrors.Mark(apperrors.ErrCapabilityMisconfigured, err),
	}
}

// NewServiceError wraps an upstream failure
func NewServiceError(providerName string, status int, code, message string, cause error) *TranscriptionServiceError {
	if code == "" {
		code = CodeForStatus(status)
	}
	return &TranscriptionServiceError{
		Status:    status,
		Code:      code,
		Message:   message,
		Provider:  providerName,
		Retryable: status == 0 || status == http.StatusTooManyRequests || status >= 500,
		cause:     cause,
	}
}

// CodeForStatus maps an upstream HTTP status to an error code
func CodeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return CodeAuthenticationFailed
	case http.StatusTooManyRequests:
		return CodeRateLimitExceeded
	case http.StatusRequestEntityTooLarge:
		return CodeFileTooLarge
	case http.StatusBadRequest:
		return CodeInvalidFile
	case 0:
		return CodeUnknown
	default:
		return CodeAPIError
	}
}

// AsServiceError extracts a *TranscriptionServiceError from err
func AsServiceError(err error) (*TranscriptionServiceError, bool) {
	var svcErr *TranscriptionServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
