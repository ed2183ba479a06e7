package main

import (
	"fmt"
	"os"

	"voice-interview/cmd/interview/cmd"
	"voice-interview/internal/config"

	// Import providers to register them
	_ "voice-interview/internal/app/api/gemini"
	_ "voice-interview/internal/app/api/openai/whisper"
)

func main() {
	// A missing .env is fine; a broken one is worth a warning
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration warning: %v\n", err)
	}

	cmd.Execute()
}
