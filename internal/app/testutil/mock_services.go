package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"voice-interview/internal/api/services"
	"voice-interview/internal/app/model"
)

// MockQuestionService is a mock implementation of services.QuestionService
type MockQuestionService struct {
	mock.Mock
}

func NewMockQuestionService(t *testing.T) *MockQuestionService {
	m := &MockQuestionService{}
	m.Test(t)
	return m
}

func (m *MockQuestionService) Resolve(ctx context.Context) []model.Prompt {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Prompt)
}

// MockTranscriptionService is a mock implementation of services.TranscriptionService
type MockTranscriptionService struct {
	mock.Mock
}

func NewMockTranscriptionService(t *testing.T) *MockTranscriptionService {
	m := &MockTranscriptionService{}
	m.Test(t)
	return m
}

func (m *MockTranscriptionService) Transcribe(ctx context.Context, upload *services.Upload) (string, error) {
	args := m.Called(ctx, upload)
	return args.String(0), args.Error(1)
}

func (m *MockTranscriptionService) TestKey(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
