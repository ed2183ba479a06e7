package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"voice-interview/internal/client/codec"
)

// flushTimeout bounds the wait for a released stream to close its chunks
const flushTimeout = 5 * time.Second

// Options configures a Recorder. Zero values select the defaults.
type Options struct {
	Limit        time.Duration
	TickInterval time.Duration
	Preferences  []string
	Clock        Clock
	Logger       *zap.Logger
}

// Recorder owns at most one live capture session on a Device.
//
// Callbacks run on the recorder's goroutines and must not call back into
// Start or Stop synchronously.
type Recorder struct {
	device Device
	limit  time.Duration
	tick   time.Duration
	prefs  []string
	clock  Clock
	logger *zap.Logger

	mu          sync.Mutex
	active      *session
	starting    bool
	lastElapsed time.Duration
	onChunk     func(size int)
	onTick      func(elapsed time.Duration)
	onFinalized func(Blob)
}

// session is one live capture
type session struct {
	mimeType  string
	startedAt time.Time
	stream    Stream
	ticker    Ticker
	chunks    [][]byte
	elapsed   time.Duration
	stopping  bool
	halt      chan struct{}
	pumpDone  chan struct{}
}

// NewRecorder creates a recorder for device
func NewRecorder(device Device, opts Options) *Recorder {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if len(opts.Preferences) == 0 {
		opts.Preferences = codec.DefaultPreferences
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Recorder{
		device: device,
		limit:  opts.Limit,
		tick:   opts.TickInterval,
		prefs:  opts.Preferences,
		clock:  opts.Clock,
		logger: opts.Logger,
	}
}

// OnChunk registers a callback for every accepted chunk
func (r *Recorder) OnChunk(fn func(size int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChunk = fn
}

// OnTick registers a callback for every elapsed time update
func (r *Recorder) OnTick(fn func(elapsed time.Duration)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onTick = fn
}

// OnFinalized registers a callback receiving every finalized recording,
// whether stopped manually or by the time limit.
func (r *Recorder) OnFinalized(fn func(Blob)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFinalized = fn
}

// Limit returns the recording ceiling
func (r *Recorder) Limit() time.Duration {
	return r.limit
}

// Negotiate returns the media type a recording would use, or "" when the
// device supports none of the preferences.
func (r *Recorder) Negotiate() string {
	return codec.Negotiate(r.prefs, r.device.Supports)
}

// Start opens a capture session and begins the elapsed time ticker. The
// device is opened without holding the recorder lock; a concurrent Start
// is refused with ErrAlreadyRecording until this one returns.
func (r *Recorder) Start(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.active != nil || r.starting {
		r.mu.Unlock()
		return "", ErrAlreadyRecording
	}
	r.starting = true
	r.mu.Unlock()

	s, err := r.open(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.starting = false
	if err != nil {
		return "", err
	}

	s.startedAt = r.clock.Now()
	s.ticker = r.clock.NewTicker(r.tick)
	r.active = s
	r.lastElapsed = 0

	go r.pump(s)
	go r.run(s)

	r.logger.Info("Recording started", zap.String("mime_type", s.mimeType), zap.Duration("limit", r.limit))
	return s.mimeType, nil
}

// open negotiates a media type and opens the device stream
func (r *Recorder) open(ctx context.Context) (*session, error) {
	if err := r.device.Available(); err != nil {
		if errors.Is(err, ErrCaptureUnsupported) || errors.Is(err, ErrPermissionDenied) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCaptureUnsupported, err)
	}

	mimeType := codec.Negotiate(r.prefs, r.device.Supports)
	if mimeType == "" {
		return nil, ErrNoSupportedCodec
	}

	stream, err := r.device.Open(ctx, mimeType)
	if err != nil {
		return nil, fmt.Errorf("open input stream: %w", err)
	}

	return &session{
		mimeType: mimeType,
		stream:   stream,
		halt:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}, nil
}

// pump accumulates non-empty chunks until the stream closes them
func (r *Recorder) pump(s *session) {
	defer close(s.pumpDone)

	for chunk := range s.stream.Chunks() {
		if len(chunk) == 0 {
			continue
		}

		r.mu.Lock()
		s.chunks = append(s.chunks, chunk)
		onChunk := r.onChunk
		r.mu.Unlock()

		if onChunk != nil {
			onChunk(len(chunk))
		}
	}
}

// run updates the elapsed time on every tick and stops at the limit
func (r *Recorder) run(s *session) {
	for {
		select {
		case <-s.halt:
			return
		case <-s.ticker.C():
			elapsed := r.clock.Now().Sub(s.startedAt)
			if elapsed > r.limit {
				elapsed = r.limit
			}

			r.mu.Lock()
			if elapsed > s.elapsed {
				s.elapsed = elapsed
			}
			elapsed = s.elapsed
			onTick := r.onTick
			r.mu.Unlock()

			if onTick != nil {
				onTick(elapsed)
			}

			if elapsed >= r.limit {
				r.logger.Info("Recording limit reached", zap.Duration("limit", r.limit))
				if _, _, err := r.stop(s); err != nil {
					r.logger.Warn("Automatic stop finished with errors", zap.Error(err))
				}
				return
			}
		}
	}
}

// Stop finalizes the live capture. It returns ok=false and does nothing
// when no capture is live or another stop is already finalizing it. A
// non-nil error reports encoder or release problems; the blob is still
// assembled from what was captured.
func (r *Recorder) Stop() (Blob, bool, error) {
	r.mu.Lock()
	s := r.active
	r.mu.Unlock()

	if s == nil {
		return Blob{}, false, nil
	}
	return r.stop(s)
}

func (r *Recorder) stop(s *session) (blob Blob, ok bool, err error) {
	r.mu.Lock()
	if r.active != s || s.stopping {
		r.mu.Unlock()
		return Blob{}, false, nil
	}
	s.stopping = true
	r.mu.Unlock()

	s.ticker.Stop()
	close(s.halt)

	stopErr := stopEncoder(s.stream)
	releaseErr := s.stream.Release()

	select {
	case <-s.pumpDone:
	case <-time.After(flushTimeout):
		r.logger.Warn("Input stream did not close after release")
	}

	elapsed := r.clock.Now().Sub(s.startedAt)
	if elapsed > r.limit {
		elapsed = r.limit
	}

	r.mu.Lock()
	if elapsed < s.elapsed {
		elapsed = s.elapsed
	}
	blob = Blob{
		Data:     bytes.Join(s.chunks, nil),
		MimeType: s.mimeType,
	}
	r.active = nil
	r.lastElapsed = elapsed
	onFinalized := r.onFinalized
	r.mu.Unlock()

	err = errors.Join(stopErr, releaseErr)
	if err != nil {
		r.logger.Warn("Recording stopped with errors", zap.Error(err))
	}
	r.logger.Info("Recording finalized",
		zap.Int("bytes", blob.Size()),
		zap.String("mime_type", blob.MimeType),
		zap.Duration("elapsed", elapsed),
	)

	if onFinalized != nil {
		onFinalized(blob)
	}
	return blob, true, err
}

// stopEncoder calls Stop, converting a panic into an error so the stream
// is still released.
func stopEncoder(stream Stream) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("stop encoder: panic: %v", rec)
		}
	}()
	if err := stream.Stop(); err != nil {
		return fmt.Errorf("stop encoder: %w", err)
	}
	return nil
}

// Recording reports whether a capture is live
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Elapsed returns the time recorded so far, or the final duration of the
// last recording when idle. It never exceeds the limit.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return r.active.elapsed
	}
	return r.lastElapsed
}
