package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ValidQuestionsDocument is a well-formed prompts document with two items
const ValidQuestionsDocument = `{
  "items": [
    {"id": 1, "text": "Tell us about your last project.", "audioUrl": "/questions/q1.mp3"},
    {"id": 2, "text": "How do you handle disagreement in a team?"}
  ]
}`

// SetupPublicDir creates a public directory with a questions/ subdirectory
// holding files. Map values are file contents.
func SetupPublicDir(t *testing.T, files map[string]string) string {
	t.Helper()

	publicDir := t.TempDir()
	questionsDir := filepath.Join(publicDir, "questions")
	require.NoError(t, os.MkdirAll(questionsDir, 0o755))

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(questionsDir, name), []byte(content), 0o644))
	}
	return publicDir
}

// DirEntries returns the names in dir
func DirEntries(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
