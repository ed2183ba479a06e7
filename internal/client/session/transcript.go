package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"voice-interview/internal/app/model"
)

// DefaultTranscriptFile is the file name transcripts are saved under
const DefaultTranscriptFile = "interview_transcript.txt"

// missingPlaceholder stands in for a prompt without an answer
const missingPlaceholder = "(missing)"

// BuildTranscript renders every prompt with its answer, in order, as
// "Prompt n: ...\nAnswer n: ...\n" blocks separated by a blank line.
func BuildTranscript(s Session) string {
	blocks := lo.Map(s.Prompts, func(_ model.Prompt, i int) string {
		promptText, answerText := missingPlaceholder, missingPlaceholder
		if s.Finalized(i) {
			promptText = s.Answers[i].PromptText
			answerText = s.Answers[i].Text
		}
		return fmt.Sprintf("Prompt %d: %s\nAnswer %d: %s\n", i+1, promptText, i+1, answerText)
	})
	return strings.Join(blocks, "\n")
}

// WriteTranscript saves a transcript as a UTF-8 text file, creating the
// parent directory when needed
func WriteTranscript(path, transcript string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create transcript directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(transcript), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}
