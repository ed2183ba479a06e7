package whisper

import (
	"context"
	"fmt"

	openaiclient "voice-interview/internal/app/api/openai"
	"voice-interview/internal/app/api/provider"
)

func init() {
	// Register openai provider with the factory
	provider.RegisterProvider(providerName, createOpenAIProvider)
}

// createOpenAIProvider creates an OpenAI Whisper provider from settings
func createOpenAIProvider(_ context.Context, settings provider.Settings) (provider.TranscriptionProvider, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("openai provider requires an API key")
	}
	client := openaiclient.NewClient(settings.APIKey, settings.BaseURL)
	return NewRemoteTranscriber(client, settings.Model), nil
}
