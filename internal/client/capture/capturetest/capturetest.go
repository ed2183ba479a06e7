// Package capturetest provides a manual clock and an in-memory device for
// exercising capture.Recorder deterministically.
package capturetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"voice-interview/internal/client/capture"
)

// ManualClock is a capture.Clock that only moves when Advance is called
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

// NewManualClock creates a clock frozen at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) NewTicker(d time.Duration) capture.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTicker{
		ch:       make(chan time.Time, 1),
		interval: d,
		next:     c.now.Add(d),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves the clock forward and fires every ticker that became due.
// Like time.Ticker, a tick is dropped when the previous one is unread.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	for _, t := range c.tickers {
		t.fire(c.now)
	}
}

type manualTicker struct {
	mu       sync.Mutex
	ch       chan time.Time
	interval time.Duration
	next     time.Time
	stopped  bool
}

func (t *manualTicker) C() <-chan time.Time {
	return t.ch
}

func (t *manualTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *manualTicker) fire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || now.Before(t.next) {
		return
	}
	for !t.next.After(now) {
		t.next = t.next.Add(t.interval)
	}
	select {
	case t.ch <- now:
	default:
	}
}

// Device is an in-memory capture.Device
type Device struct {
	mu        sync.Mutex
	supported map[string]bool
	// AvailableErr is returned by Available
	AvailableErr error
	// OpenErr is returned by Open
	OpenErr error
	// OpenGate, when set, holds Open until it is closed
	OpenGate chan struct{}
	// Configure, when set, adjusts every stream before it is returned
	Configure func(*Stream)
	streams   []*Stream
	opening   int
}

// NewDevice creates a device supporting the given media types
func NewDevice(supported ...string) *Device {
	d := &Device{supported: make(map[string]bool)}
	for _, m := range supported {
		d.supported[m] = true
	}
	return d
}

func (d *Device) Available() error {
	return d.AvailableErr
}

func (d *Device) Supports(mimeType string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.supported[mimeType]
}

func (d *Device) Open(_ context.Context, mimeType string) (capture.Stream, error) {
	if d.OpenGate != nil {
		d.mu.Lock()
		d.opening++
		d.mu.Unlock()

		<-d.OpenGate

		d.mu.Lock()
		d.opening--
		d.mu.Unlock()
	}
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}

	s := NewStream(mimeType)
	if d.Configure != nil {
		d.Configure(s)
	}

	d.mu.Lock()
	d.streams = append(d.streams, s)
	d.mu.Unlock()
	return s, nil
}

// Opening reports whether an Open call is waiting on OpenGate
func (d *Device) Opening() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opening > 0
}

// Streams returns every stream opened so far
func (d *Device) Streams() []*Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Stream(nil), d.streams...)
}

// LastStream returns the most recently opened stream, or nil
func (d *Device) LastStream() *Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.streams) == 0 {
		return nil
	}
	return d.streams[len(d.streams)-1]
}

// Stream is an in-memory capture.Stream
type Stream struct {
	MimeType string
	// StopErr is returned by Stop
	StopErr error
	// StopPanics makes Stop panic
	StopPanics bool
	// Flush is delivered by Stop as the encoder's final chunk
	Flush []byte

	ch          chan []byte
	mu          sync.Mutex
	stopCalls   int
	released    bool
	releaseOnce sync.Once
}

// NewStream creates an open stream
func NewStream(mimeType string) *Stream {
	return &Stream{MimeType: mimeType, ch: make(chan []byte, 64)}
}

// Emit delivers an encoded chunk. It must not be called after Release.
func (s *Stream) Emit(chunk []byte) {
	s.ch <- chunk
}

func (s *Stream) Chunks() <-chan []byte {
	return s.ch
}

func (s *Stream) Stop() error {
	s.mu.Lock()
	s.stopCalls++
	s.mu.Unlock()

	if s.StopPanics {
		panic("encoder crashed")
	}
	if len(s.Flush) > 0 {
		s.ch <- s.Flush
	}
	return s.StopErr
}

func (s *Stream) Release() error {
	s.releaseOnce.Do(func() {
		s.mu.Lock()
		s.released = true
		s.mu.Unlock()
		close(s.ch)
	})
	return nil
}

// StopCalls returns how many times Stop was called
func (s *Stream) StopCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopCalls
}

// Released reports whether Release was called
func (s *Stream) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// ErrDenied is a ready-made permission failure for Device.OpenErr
var ErrDenied = fmt.Errorf("%w: user dismissed the prompt", capture.ErrPermissionDenied)
