package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"voice-interview/internal/app/api/provider"
)

func TestMimeTypeFor(t *testing.T) {
	testCases := map[string]string{
		"answer1.webm": "audio/webm",
		"answer2.OGG":  "audio/ogg",
		"answer3.mp4":  "audio/mp4",
		"intro.mp3":    "audio/mpeg",
		"noext":        "audio/webm",
	}
	for name, expected := range testCases {
		assert.Equal(t, expected, MimeTypeFor(name), name)
	}
}

func TestCreateGeminiProvider_RequiresKey(t *testing.T) {
	_, err := createGeminiProvider(context.Background(), provider.Settings{})
	assert.Error(t, err)
	assert.Contains(t, provider.ListRegisteredProviders(), "gemini")
}

func TestTranscriber_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello there"}]}}]}`))
	}))
	defer server.Close()

	p, err := createGeminiProvider(context.Background(), provider.Settings{APIKey: "AIza-test", BaseURL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())

	path := filepath.Join(t.TempDir(), "answer1.webm")
	require.NoError(t, os.WriteFile(path, []byte("fake audio"), 0o644))

	text, err := p.Transcribe(context.Background(), &provider.TranscriptionRequest{InputFilePath: path, Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", text)
}

func TestTranscriber_MissingFile(t *testing.T) {
	tr := NewTranscriber(nil, "")
	_, err := tr.Transcribe(context.Background(), &provider.TranscriptionRequest{InputFilePath: filepath.Join(t.TempDir(), "gone.webm")})

	svcErr, ok := provider.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, provider.CodeInvalidFile, svcErr.Code)
	assert.Equal(t, http.StatusInternalServerError, svcErr.HTTPStatus())
}
