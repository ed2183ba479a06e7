package testutil

import (
	"context"
	"os"
	"sync"

	"voice-interview/internal/app/api/provider"
)

// ProviderCall records one Transcribe call
type ProviderCall struct {
	Request    provider.TranscriptionRequest
	FileExists bool
	Content    []byte
}

// MockProvider is a scripted provider.TranscriptionProvider. It also
// implements provider.ModelLister.
type MockProvider struct {
	mu       sync.Mutex
	name     string
	response string
	err      error
	models   []string
	modelErr error
	calls    []ProviderCall
}

// NewMockProvider creates a provider named "mock" that returns an empty text
func NewMockProvider() *MockProvider {
	return &MockProvider{name: "mock"}
}

// WithResponse sets the text returned by Transcribe
func (m *MockProvider) WithResponse(text string) *MockProvider {
	m.response = text
	return m
}

// WithError makes Transcribe fail with err
func (m *MockProvider) WithError(err error) *MockProvider {
	m.err = err
	return m
}

// WithModels sets the result of ListModels
func (m *MockProvider) WithModels(ids []string, err error) *MockProvider {
	m.models = ids
	m.modelErr = err
	return m
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Transcribe(_ context.Context, request *provider.TranscriptionRequest) (string, error) {
	content, readErr := os.ReadFile(request.InputFilePath)

	m.mu.Lock()
	m.calls = append(m.calls, ProviderCall{
		Request:    *request,
		FileExists: readErr == nil,
		Content:    content,
	})
	m.mu.Unlock()

	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *MockProvider) ListModels(context.Context) ([]string, error) {
	return m.models, m.modelErr
}

// Calls returns a copy of the recorded calls
func (m *MockProvider) Calls() []ProviderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ProviderCall(nil), m.calls...)
}

// Factory returns a provider.Factory always yielding m
func (m *MockProvider) Factory() provider.Factory {
	return provider.FactoryFunc(func(context.Context) (provider.TranscriptionProvider, error) {
		return m, nil
	})
}
