package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
	"voice-interview/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, createGeminiProvider)
}

func createGeminiProvider(ctx context.Context, settings provider.Settings) (provider.TranscriptionProvider, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("gemini provider requires an API key")
	}

	cfg := &genai.ClientConfig{
		APIKey:  settings.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if settings.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: settings.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return NewTranscriber(client, settings.Model), nil
}
