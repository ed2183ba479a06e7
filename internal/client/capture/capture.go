// Package capture records one spoken answer at a time from an audio input
// device, enforcing the per-answer time ceiling.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCaptureUnsupported means no usable input device is available
	ErrCaptureUnsupported = errors.New("audio capture is not supported on this system")
	// ErrPermissionDenied means access to the microphone was refused
	ErrPermissionDenied = errors.New("microphone access denied")
	// ErrNoSupportedCodec means none of the preferred encodings is available
	ErrNoSupportedCodec = errors.New("no supported audio encoding")
	// ErrAlreadyRecording is returned by Start while a capture is live
	ErrAlreadyRecording = errors.New("a recording is already in progress")
)

const (
	// DefaultLimit is the ceiling for a single answer
	DefaultLimit = 180 * time.Second
	// DefaultTickInterval drives the elapsed time readout (5 Hz)
	DefaultTickInterval = 200 * time.Millisecond
)

// Blob is one finalized recording
type Blob struct {
	Data     []byte
	MimeType string
}

// Size returns the recording size in bytes
func (b Blob) Size() int {
	return len(b.Data)
}

// Device is a source of encoded audio
type Device interface {
	// Available reports whether the device can record at all
	Available() error
	// Supports reports whether the device can encode mimeType
	Supports(mimeType string) bool
	// Open starts encoding with mimeType. It may fail with
	// ErrPermissionDenied.
	Open(ctx context.Context, mimeType string) (Stream, error)
}

// Stream is an open input stream producing encoded chunks
type Stream interface {
	// Chunks delivers encoded data in order. It is closed once the stream
	// is released.
	Chunks() <-chan []byte
	// Stop halts the encoder and flushes pending data to Chunks
	Stop() error
	// Release frees the hardware handle. It is safe to call more than once.
	Release() error
}

// FormatElapsed renders d as mm:ss, truncating to whole seconds
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
