package check

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"voice-interview/internal/client/apiclient"
)

var serverURL string

// Cmd represents the check command
var Cmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the server is up and its transcription credential works",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := apiclient.New(serverURL, nil)
		out := cmd.OutOrStdout()

		if err := client.Health(cmd.Context()); err != nil {
			return fmt.Errorf("server at %s is not healthy: %w", serverURL, err)
		}
		fmt.Fprintf(out, "Server %s is up\n", serverURL)

		result, err := client.TestKey(cmd.Context())
		if err != nil {
			return err
		}
		if !result.OK {
			return fmt.Errorf("transcription credential rejected: %s", result.Message)
		}
		fmt.Fprintf(out, "Transcription credential works (models: %s)\n", strings.Join(result.Sample, ", "))
		return nil
	},
}

func init() {
	Cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:3000", "interview server URL")
}
