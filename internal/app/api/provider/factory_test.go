package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "voice-interview/internal/app/errors"
)

type stubProvider struct {
	settings Settings
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Transcribe(context.Context, *TranscriptionRequest) (string, error) {
	return "ok", nil
}

func init() {
	RegisterProvider("stub", func(_ context.Context, settings Settings) (TranscriptionProvider, error) {
		return &stubProvider{settings: settings}, nil
	})
}

func TestEnvFactory_Create(t *testing.T) {
	f := NewEnvFactory("stub", Settings{Model: "m1", APIKey: "ignored"}, func(string) (string, error) {
		return "sk-from-env", nil
	})

	p, err := f.Create(context.Background())
	require.NoError(t, err)

	stub := p.(*stubProvider)
	assert.Equal(t, "sk-from-env", stub.settings.APIKey)
	assert.Equal(t, "m1", stub.settings.Model)
	assert.Equal(t, "stub", f.ProviderType())
}

func TestEnvFactory_MissingCredential(t *testing.T) {
	f := NewEnvFactory("stub", Settings{}, func(string) (string, error) {
		return "", errors.New("OPENAI_API_KEY not set")
	})

	_, err := f.Create(context.Background())

	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.True(t, svcErr.Misconfigured())
	assert.Equal(t, http.StatusBadRequest, svcErr.HTTPStatus())
	assert.Contains(t, svcErr.Message, "OPENAI_API_KEY")
	assert.ErrorIs(t, err, apperrors.ErrCapabilityMisconfigured)
}

func TestEnvFactory_KeepsCredentialCause(t *testing.T) {
	f := NewEnvFactory("stub", Settings{}, func(string) (string, error) {
		return "", apperrors.Wrapf(apperrors.ErrMissingAPIKey, "stub credential not set (%s)", "STUB_API_KEY")
	})

	_, err := f.Create(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrCapabilityMisconfigured)
	assert.ErrorIs(t, err, apperrors.ErrMissingAPIKey)
}

func TestEnvFactory_UnregisteredProvider(t *testing.T) {
	f := NewEnvFactory("nope", Settings{}, func(string) (string, error) { return "k", nil })

	_, err := f.Create(context.Background())
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.True(t, svcErr.Misconfigured())
	assert.ErrorIs(t, err, apperrors.ErrProviderNotFound)
}

func TestListRegisteredProviders(t *testing.T) {
	assert.Contains(t, ListRegisteredProviders(), "stub")
}

func TestTranscriptionServiceError_HTTPStatus(t *testing.T) {
	testCases := []struct {
		name           string
		status         int
		expectedStatus int
		expectedCode   string
		retryable      bool
	}{
		{name: "rate limited", status: 429, expectedStatus: 429, expectedCode: CodeRateLimitExceeded, retryable: true},
		{name: "unauthorized", status: 401, expectedStatus: 401, expectedCode: CodeAuthenticationFailed},
		{name: "too large", status: 413, expectedStatus: 413, expectedCode: CodeFileTooLarge},
		{name: "upstream gave no status", status: 0, expectedStatus: 500, expectedCode: CodeUnknown, retryable: true},
		{name: "upstream 503", status: 503, expectedStatus: 503, expectedCode: CodeAPIError, retryable: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewServiceError("openai", tc.status, "", "failed", nil)
			assert.Equal(t, tc.expectedStatus, err.HTTPStatus())
			assert.Equal(t, tc.expectedCode, err.Code)
			assert.Equal(t, tc.retryable, err.Retryable)
			assert.False(t, err.Misconfigured())
		})
	}
}
