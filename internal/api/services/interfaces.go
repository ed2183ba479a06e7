package services

import (
	"context"

	"voice-interview/internal/app/model"
)

// QuestionService resolves the interview prompt list
type QuestionService interface {
	Resolve(ctx context.Context) []model.Prompt
}

// TranscriptionService relays recorded answers to the transcription
// capability
type TranscriptionService interface {
	Transcribe(ctx context.Context, upload *Upload) (string, error)
	TestKey(ctx context.Context) ([]string, error)
}
