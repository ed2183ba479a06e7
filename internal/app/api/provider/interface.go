package provider

import (
	"context"
)

// TranscriptionProvider is the transcription capability: it accepts a
// recorded audio file and returns its text.
type TranscriptionProvider interface {
	// Name identifies the provider in logs and error bodies
	Name() string

	// Transcribe converts the audio file named by the request to text
	Transcribe(ctx context.Context, request *TranscriptionRequest) (string, error)
}

// ModelLister is implemented by providers that can enumerate their models.
// It doubles as a cheap credential check.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// TranscriptionRequest describes one transcription call
type TranscriptionRequest struct {
	InputFilePath string
	Language      string
	Model         string
}
