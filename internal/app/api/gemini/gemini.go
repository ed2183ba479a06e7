package gemini

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
	"voice-interview/internal/app/api/provider"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.0-flash"
)

var audioMimeTypes = map[string]string{
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".mp4":  "audio/mp4",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
}

// Transcriber asks a Gemini model for a verbatim transcription of the
// uploaded audio.
type Transcriber struct {
	client *genai.Client
	model  string
}

// NewTranscriber wraps an existing genai client
func NewTranscriber(client *genai.Client, model string) *Transcriber {
	if model == "" {
		model = defaultModel
	}
	return &Transcriber{client: client, model: model}
}

// Name implements provider.TranscriptionProvider
func (t *Transcriber) Name() string {
	return providerName
}

// Transcribe implements provider.TranscriptionProvider
func (t *Transcriber) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (string, error) {
	if request.InputFilePath == "" {
		return "", provider.NewServiceError(providerName, 0, provider.CodeInvalidFile, "input file path is required", nil)
	}

	data, err := os.ReadFile(request.InputFilePath)
	if err != nil {
		return "", provider.NewServiceError(providerName, 0, provider.CodeInvalidFile, fmt.Sprintf("read audio: %v", err), err)
	}

	model := t.model
	if request.Model != "" {
		model = request.Model
	}

	parts := []*genai.Part{
		genai.NewPartFromText(instruction(request.Language)),
		genai.NewPartFromBytes(data, MimeTypeFor(request.InputFilePath)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := t.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		// genai does not expose the HTTP status in a stable form; report it as
		// an upstream failure without one.
		return "", provider.NewServiceError(providerName, 0, provider.CodeAPIError, err.Error(), err)
	}

	return resp.Text(), nil
}

// ListModels implements provider.ModelLister
func (t *Transcriber) ListModels(ctx context.Context) ([]string, error) {
	page, err := t.client.Models.List(ctx, nil)
	if err != nil {
		return nil, provider.NewServiceError(providerName, 0, provider.CodeAPIError, err.Error(), err)
	}

	ids := make([]string, 0, len(page.Items))
	for _, m := range page.Items {
		ids = append(ids, m.Name)
	}
	return ids, nil
}

// MimeTypeFor guesses the audio media type from the file extension
func MimeTypeFor(path string) string {
	if mt, ok := audioMimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return "audio/webm"
}

func instruction(language string) string {
	prompt := "Transcribe this audio recording verbatim. Respond with the transcription only, without commentary."
	if language != "" {
		prompt += fmt.Sprintf(" The speaker uses the language with code %q.", language)
	}
	return prompt
}
