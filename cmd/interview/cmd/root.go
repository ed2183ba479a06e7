package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"voice-interview/cmd/interview/cmd/check"
	"voice-interview/cmd/interview/cmd/run"
	"voice-interview/cmd/interview/cmd/serve"
	"voice-interview/cmd/interview/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "interview",
	Short: "A timed voice interview with transcribed answers",
	Long: `A scripted voice interview: each prompt gets a spoken answer of at most
three minutes, every answer is transcribed, and the whole conversation is
saved as a plain-text transcript.
- "interview serve" runs the API server that resolves prompts and proxies transcription
- "interview run" conducts the interview against a running server`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(run.Cmd)
	rootCmd.AddCommand(check.Cmd)
	rootCmd.AddCommand(version.Cmd)
}
