package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"voice-interview/internal/api/server"
	"voice-interview/internal/config"
	"voice-interview/internal/logging"
)

const shutdownTimeout = 30 * time.Second

var configPath string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interview API server",
	Long: `Serve the interview API (/api/questions, /api/transcribe, /api/health,
/api/test-key), Prometheus metrics at /metrics and the public directory.

The transcription credential is read from OPENAI_API_KEY or GEMINI_API_KEY
on every request; PORT overrides the configured port.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logger := logging.NewServerLogger(cfg.Logging, os.Stderr)
		if _, err := config.RequireAPIKey(cfg.Transcription.Provider); err != nil {
			// the server still starts; transcription answers with missing_api_key
			logger.Warn("Transcription credential not configured", "provider", cfg.Transcription.Provider, "error", err)
		}

		srv := server.New(cfg, logger)
		errCh := srv.Start()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case sig := <-quit:
			logger.Info("Received signal", "signal", sig.String())
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML server config (defaults apply when omitted)")
}
