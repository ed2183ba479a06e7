// Package batch runs an interview unattended, answering every prompt with
// a pre-recorded file.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"voice-interview/internal/client/session"
)

// Interview is the part of session.Controller the runner drives
type Interview interface {
	Start(ctx context.Context) error
	CodecNote() string
	ToggleRecording(ctx context.Context) error
	Submit(ctx context.Context) error
	Advance() error
	Transcript() (string, error)
	Snapshot() session.Session
}

// Options configures a Runner
type Options struct {
	// Output is where the transcript is written; empty skips writing
	Output string
	// Retries is how many times a failed transcription is resubmitted
	Retries int
	// RetryDelay separates resubmissions
	RetryDelay time.Duration
	Progress   ProgressConfig
}

// Runner answers each prompt in turn: record, submit, advance
type Runner struct {
	interview Interview
	options   Options
	logger    *zap.Logger
	progress  *ProgressManager
}

// NewRunner creates a runner for interview
func NewRunner(interview Interview, options Options, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		interview: interview,
		options:   options,
		logger:    logger,
		progress:  NewProgressManager(options.Progress),
	}
}

// Run conducts the whole interview and returns the transcript
func (r *Runner) Run(ctx context.Context) (string, error) {
	if err := r.interview.Start(ctx); err != nil {
		return "", err
	}
	r.logger.Info(r.interview.CodecNote())

	total := len(r.interview.Snapshot().Prompts)
	bar := r.progress.CreateBar(total, "Answering prompts")
	defer r.progress.Wait()
	defer bar.Abort()

	for r.interview.Snapshot().Phase == session.PhaseActive {
		s := r.interview.Snapshot()
		prompt, _ := s.Current()
		r.logger.Info("Prompt", zap.Int("number", s.Index+1), zap.String("text", prompt.Text))

		if err := r.answer(ctx, s.Index); err != nil {
			return "", err
		}
		if err := r.interview.Advance(); err != nil {
			return "", fmt.Errorf("advance past prompt %d: %w", s.Index+1, err)
		}
		bar.Increment()
	}

	transcript, err := r.interview.Transcript()
	if err != nil {
		return "", err
	}

	if r.options.Output != "" {
		if err := session.WriteTranscript(r.options.Output, transcript); err != nil {
			return "", err
		}
		r.logger.Info("Transcript saved", zap.String("path", r.options.Output))
	}
	return transcript, nil
}

func (r *Runner) answer(ctx context.Context, index int) error {
	// start, then stop: the replayed recording is complete once stopped
	if err := r.interview.ToggleRecording(ctx); err != nil {
		return fmt.Errorf("record answer %d: %w", index+1, err)
	}
	if err := r.interview.ToggleRecording(ctx); err != nil {
		r.logger.Warn("Recording finished with errors", zap.Int("prompt", index+1), zap.Error(err))
	}
	if r.interview.Snapshot().Capture != session.CaptureCaptured {
		return fmt.Errorf("record answer %d: no recording captured", index+1)
	}

	var err error
	for attempt := 0; attempt <= r.options.Retries; attempt++ {
		if attempt > 0 {
			r.logger.Info("Retrying transcription", zap.Int("prompt", index+1), zap.Int("attempt", attempt+1))
			if sleepErr := sleep(ctx, r.options.RetryDelay); sleepErr != nil {
				return errors.Join(err, sleepErr)
			}
		}
		if err = r.interview.Submit(ctx); err == nil {
			answer := r.interview.Snapshot().Answers[index]
			text := answer.Text
			if text == "" {
				text = "(empty transcription)"
			}
			r.logger.Info("Answer", zap.Int("number", index+1), zap.String("text", text))
			return nil
		}
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
