package whisper

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"voice-interview/internal/app/api/provider"
)

const providerName = "openai"

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client *openai.Client
	model  string
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client, model string) *RemoteTranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	return &RemoteTranscriber{client: client, model: model}
}

// Name implements provider.TranscriptionProvider
func (rt *RemoteTranscriber) Name() string {
	return providerName
}

// Transcribe uses the OpenAI API for remote transcription.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (string, error) {
	if request.InputFilePath == "" {
		return "", provider.NewServiceError(providerName, 0, provider.CodeInvalidFile, "input file path is required", nil)
	}

	model := rt.model
	if request.Model != "" {
		model = request.Model
	}

	resp, err := rt.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    model,
		FilePath: request.InputFilePath,
		Language: request.Language,
	})
	if err != nil {
		return "", handleAPIError(err)
	}

	return resp.Text, nil
}

// ListModels returns the model ids visible to the configured key
func (rt *RemoteTranscriber) ListModels(ctx context.Context) ([]string, error) {
	list, err := rt.client.ListModels(ctx)
	if err != nil {
		return nil, handleAPIError(err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// handleAPIError converts OpenAI client errors to a TranscriptionServiceError
// carrying the upstream status, code and message.
func handleAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := ""
		if c, ok := apiErr.Code.(string); ok {
			code = c
		}
		return provider.NewServiceError(providerName, apiErr.HTTPStatusCode, code, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return provider.NewServiceError(providerName, reqErr.HTTPStatusCode, "", reqErr.Error(), err)
	}

	return provider.NewServiceError(providerName, 0, "", fmt.Sprintf("transcription failed: %v", err), err)
}
