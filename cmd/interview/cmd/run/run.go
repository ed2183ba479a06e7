package run

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"voice-interview/internal/client/apiclient"
	"voice-interview/internal/client/batch"
	"voice-interview/internal/client/capture"
	"voice-interview/internal/client/session"
	"voice-interview/internal/client/tui"
	"voice-interview/internal/logging"
)

var (
	serverURL   string
	answers     []string
	inputDevice string
	output      string
	limit       time.Duration
	logFile     string
	retries     int
	progress    bool
	verbose     bool
)

// Cmd represents the run command
var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Conduct the interview",
	Long: `Conduct the interview against a running server.

Without --answers the interview is interactive: answers are recorded from
the microphone through ffmpeg. With --answers every prompt is answered by
the next pre-recorded file and the transcript is written without prompting.`,
	Example: `  interview run
  interview run --answers intro.webm,achievement.ogg -o transcript.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if len(answers) > 0 {
			return runBatch(ctx)
		}
		return runInteractive(ctx)
	},
}

func init() {
	Cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:3000", "interview server URL")
	Cmd.Flags().StringSliceVarP(&answers, "answers", "a", nil, "pre-recorded answer files, one per prompt (scripted run)")
	Cmd.Flags().StringVarP(&inputDevice, "device", "d", "", "ffmpeg input device (platform default when empty)")
	Cmd.Flags().StringVarP(&output, "output", "o", session.DefaultTranscriptFile, "transcript file")
	Cmd.Flags().DurationVar(&limit, "limit", capture.DefaultLimit, "maximum length of one answer")
	Cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (interactive mode logs nowhere otherwise)")
	Cmd.Flags().IntVar(&retries, "retries", 2, "resubmissions of a failed transcription (scripted run)")
	Cmd.Flags().BoolVar(&progress, "progress", false, "force the progress bar even when stderr is not a terminal")
	Cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "development logging")
}

func newController(device capture.Device, logger *zap.Logger) *session.Controller {
	recorder := capture.NewRecorder(device, capture.Options{Limit: limit, Logger: logger})
	return session.NewController(apiclient.New(serverURL, nil), recorder, logger)
}

func runBatch(ctx context.Context) error {
	logger, err := logging.NewLogger(verbose, logFile)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	controller := newController(capture.NewFileDevice(answers...), logger)
	runner := batch.NewRunner(controller, batch.Options{
		Output:     output,
		Retries:    retries,
		RetryDelay: 2 * time.Second,
		Progress: batch.ProgressConfig{
			Enabled: batch.ShouldShowProgress(progress),
		},
	}, logger)

	transcript, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Print(transcript)
	return nil
}

func runInteractive(ctx context.Context) error {
	logger := zap.NewNop()
	if logFile != "" {
		var err error
		if logger, err = logging.NewLogger(verbose, logFile); err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
	}

	device := capture.NewFFmpegDevice(inputDevice, logger)
	if err := device.Available(); err != nil {
		return err
	}
	return tui.Run(ctx, newController(device, logger), output)
}
