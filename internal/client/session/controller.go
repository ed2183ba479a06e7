package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"voice-interview/internal/app/model"
	"voice-interview/internal/client/capture"
	"voice-interview/internal/client/codec"
)

// API is the part of the server API the controller needs
type API interface {
	Questions(ctx context.Context) ([]model.Prompt, error)
	Transcribe(ctx context.Context, audio capture.Blob, filename string) (string, error)
}

// Recorder is the capture unit the controller drives
type Recorder interface {
	Start(ctx context.Context) (string, error)
	Stop() (capture.Blob, bool, error)
	Elapsed() time.Duration
	Limit() time.Duration
	Negotiate() string
	OnFinalized(fn func(capture.Blob))
}

// Controller runs a Session against the server API and a recorder. All
// methods are safe for concurrent use.
type Controller struct {
	api      API
	recorder Recorder
	logger   *zap.Logger

	mu       sync.Mutex
	session  Session
	epoch    int
	onChange func(Session)
}

// NewController creates a controller and subscribes it to the recorder's
// finalized recordings
func NewController(api API, recorder Recorder, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		api:      api,
		recorder: recorder,
		logger:   logger,
	}
	recorder.OnFinalized(c.recordingFinalized)
	return c
}

// OnChange registers a callback receiving every new session state. It runs
// outside the controller lock.
func (c *Controller) OnChange(fn func(Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// CodecNote describes the media type recordings will use
func (c *Controller) CodecNote() string {
	return codec.Describe(c.recorder.Negotiate())
}

// Start loads the prompts and opens the first one
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.session.Phase != PhaseNotStarted {
		err := invalid(c.session, Started{})
		c.mu.Unlock()
		return err
	}
	epoch := c.epoch
	c.mu.Unlock()

	prompts, err := c.api.Questions(ctx)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return fmt.Errorf("%w: session reset while loading prompts", ErrInvalidTransition)
	}
	if err := c.applyLocked(Started{Prompts: prompts}); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	c.logger.Info("Interview started", zap.Int("prompts", len(prompts)))
	c.notify()
	return nil
}

// ToggleRecording starts a recording for the current prompt, or stops the
// live one. A stopped recording reaches the session through the recorder's
// finalized callback.
func (c *Controller) ToggleRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.session.Phase == PhaseActive && c.session.Capture == CaptureRecording {
		c.mu.Unlock()

		// Stop runs unlocked: it delivers the blob through recordingFinalized
		if _, _, err := c.recorder.Stop(); err != nil {
			c.logger.Warn("Recording stopped with errors", zap.Error(err))
			return fmt.Errorf("stop recording: %w", err)
		}
		return nil
	}

	if _, err := Apply(c.session, RecordingStarted{}); err != nil {
		c.mu.Unlock()
		return err
	}

	// The lock is held across Start so a finalized callback for this
	// recording cannot overtake the RecordingStarted transition.
	mimeType, err := c.recorder.Start(ctx)
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("Recording could not start", zap.Error(err))
		return fmt.Errorf("start recording: %w", err)
	}
	_ = c.applyLocked(RecordingStarted{})
	index := c.session.Index
	c.mu.Unlock()

	c.logger.Info("Recording answer", zap.Int("prompt", index+1), zap.String("mime_type", mimeType))
	c.notify()
	return nil
}

func (c *Controller) recordingFinalized(audio capture.Blob) {
	c.mu.Lock()
	err := c.applyLocked(RecordingStopped{Audio: audio})
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("Dropping recording", zap.Error(err))
		return
	}
	c.notify()
}

// Submit sends the current take for transcription. On failure the take is
// kept so the caller may retry.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if err := c.applyLocked(SubmitStarted{}); err != nil {
		c.mu.Unlock()
		return err
	}
	take := *c.session.Take
	index := c.session.Index
	epoch := c.epoch
	c.mu.Unlock()
	c.notify()

	filename := fmt.Sprintf("answer%d%s", index+1, codec.Extension(take.MimeType))
	c.logger.Info("Submitting answer",
		zap.Int("prompt", index+1),
		zap.String("filename", filename),
		zap.Int("bytes", take.Size()),
	)

	text, err := c.api.Transcribe(ctx, take, filename)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.logger.Debug("Discarding transcription for a reset session", zap.Int("prompt", index+1))
		return fmt.Errorf("%w: session reset during submission", ErrInvalidTransition)
	}
	if err != nil {
		_ = c.applyLocked(SubmitFailed{Err: err})
	} else {
		_ = c.applyLocked(SubmitSucceeded{Text: text})
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.logger.Warn("Transcription failed", zap.Int("prompt", index+1), zap.Error(err))
		return fmt.Errorf("transcribe answer %d: %w", index+1, err)
	}
	c.logger.Info("Answer transcribed", zap.Int("prompt", index+1), zap.Int("chars", len(text)))
	return nil
}

// Advance moves to the next prompt, or finishes the interview after the
// last one
func (c *Controller) Advance() error {
	c.mu.Lock()
	err := c.applyLocked(Advanced{})
	phase, index := c.session.Phase, c.session.Index
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if phase == PhaseFinished {
		c.logger.Info("Interview finished")
	} else {
		c.logger.Debug("Advanced", zap.Int("prompt", index+1))
	}
	c.notify()
	return nil
}

// Transcript renders the finished interview
func (c *Controller) Transcript() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Phase != PhaseFinished {
		return "", fmt.Errorf("%w: interview is %s", ErrInvalidTransition, c.session.Phase)
	}
	return BuildTranscript(c.session), nil
}

// Reset discards the session, stopping a live recording first
func (c *Controller) Reset() {
	c.mu.Lock()
	recording := c.session.Phase == PhaseActive && c.session.Capture == CaptureRecording
	c.session, _ = Apply(c.session, Reset{})
	c.epoch++
	c.mu.Unlock()

	if recording {
		if _, _, err := c.recorder.Stop(); err != nil {
			c.logger.Warn("Recording stopped with errors during reset", zap.Error(err))
		}
	}
	c.logger.Info("Interview reset")
	c.notify()
}

// Snapshot returns a copy of the session
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	s.Answers = append([]*Answer(nil), s.Answers...)
	return s
}

// CanSubmit reports whether a take is ready for transcription
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := Apply(c.session, SubmitStarted{})
	return err == nil
}

// CanAdvance reports whether the current prompt may be left
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := Apply(c.session, Advanced{})
	return err == nil
}

// Elapsed is the recorded time of the live or last recording
func (c *Controller) Elapsed() time.Duration {
	return c.recorder.Elapsed()
}

// Limit is the recording ceiling
func (c *Controller) Limit() time.Duration {
	return c.recorder.Limit()
}

func (c *Controller) applyLocked(ev Event) error {
	next, err := Apply(c.session, ev)
	if err != nil {
		return err
	}
	c.session = next
	return nil
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	s := c.session
	c.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}
