package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"voice-interview/internal/client/codec"
)

const (
	ffmpegChunkSize = 32 * 1024
	// startupProbe is how long Open waits for ffmpeg to fail on a missing
	// or refused input before handing out the stream
	startupProbe = 300 * time.Millisecond
	stopGrace    = 5 * time.Second
)

// FFmpegDevice records the microphone through the ffmpeg binary, which
// encodes to the negotiated container on stdout.
type FFmpegDevice struct {
	Binary      string
	InputFormat string
	InputDevice string
	logger      *zap.Logger
}

// NewFFmpegDevice creates a device for the platform's default input. An
// empty inputDevice selects the platform default.
func NewFFmpegDevice(inputDevice string, logger *zap.Logger) *FFmpegDevice {
	if logger == nil {
		logger = zap.NewNop()
	}
	format, device := defaultInput(runtime.GOOS)
	if inputDevice != "" {
		device = inputDevice
	}
	return &FFmpegDevice{
		Binary:      "ffmpeg",
		InputFormat: format,
		InputDevice: device,
		logger:      logger,
	}
}

func defaultInput(goos string) (format, device string) {
	switch goos {
	case "darwin":
		return "avfoundation", ":0"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "pulse", "default"
	}
}

// encoderArgs returns the ffmpeg output arguments for a media type
func encoderArgs(mimeType string) ([]string, bool) {
	switch codec.Container(mimeType) {
	case "webm":
		return []string{"-c:a", "libopus", "-f", "webm"}, true
	case "ogg":
		return []string{"-c:a", "libopus", "-f", "ogg"}, true
	case "mp4":
		return []string{"-c:a", "aac", "-f", "mp4", "-movflags", "frag_keyframe+empty_moov"}, true
	case "aac":
		return []string{"-c:a", "aac", "-f", "adts"}, true
	default:
		return nil, false
	}
}

// Available checks that the ffmpeg binary can be found
func (d *FFmpegDevice) Available() error {
	if _, err := exec.LookPath(d.Binary); err != nil {
		return fmt.Errorf("%w: %s not found in PATH", ErrCaptureUnsupported, d.Binary)
	}
	return nil
}

// Supports reports whether ffmpeg can stream mimeType
func (d *FFmpegDevice) Supports(mimeType string) bool {
	_, ok := encoderArgs(mimeType)
	return ok
}

// Args returns the full ffmpeg command line for mimeType
func (d *FFmpegDevice) Args(mimeType string) []string {
	out, _ := encoderArgs(mimeType)
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", d.InputFormat, "-i", d.InputDevice,
		"-ac", "1",
	}
	args = append(args, out...)
	return append(args, "pipe:1")
}

// Open starts ffmpeg. Failures that show up immediately, such as a refused
// microphone, are reported here rather than as an empty recording.
func (d *FFmpegDevice) Open(_ context.Context, mimeType string) (Stream, error) {
	if !d.Supports(mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrNoSupportedCodec, mimeType)
	}

	// stdin stays attached so Stop can send "q"
	args := d.Args(mimeType)
	cmd := exec.Command(d.Binary, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	d.logger.Debug("Starting ffmpeg", zap.String("binary", d.Binary), zap.Strings("args", args))
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start ffmpeg: %v", ErrCaptureUnsupported, err)
	}

	s := &ffmpegStream{
		cmd:    cmd,
		stdin:  stdin,
		stderr: stderr,
		ch:     make(chan []byte, 16),
		done:   make(chan struct{}),
	}
	go s.read(stdout)

	select {
	case <-s.done:
		return nil, classifyFFmpegFailure(s.waitErr, stderr.String())
	case <-time.After(startupProbe):
	}
	return s, nil
}

func classifyFFmpegFailure(waitErr error, stderr string) error {
	msg := strings.TrimSpace(stderr)
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission denied") || strings.Contains(lower, "not permitted") {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, msg)
	}
	if msg == "" && waitErr != nil {
		msg = waitErr.Error()
	}
	return fmt.Errorf("%w: ffmpeg exited: %s", ErrCaptureUnsupported, msg)
}

type ffmpegStream struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  *bytes.Buffer
	ch      chan []byte
	done    chan struct{}
	waitErr error

	stopOnce    sync.Once
	releaseOnce sync.Once
	stopErr     error
}

// read forwards stdout until EOF, then reaps the process
func (s *ffmpegStream) read(stdout io.Reader) {
	defer close(s.done)

	buf := make([]byte, ffmpegChunkSize)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.ch <- chunk
		}
		if err != nil {
			break
		}
	}
	close(s.ch)
	s.waitErr = s.cmd.Wait()
}

func (s *ffmpegStream) Chunks() <-chan []byte {
	return s.ch
}

// Stop asks ffmpeg to finish the container and waits for it to exit
func (s *ffmpegStream) Stop() error {
	s.stopOnce.Do(func() {
		_, _ = io.WriteString(s.stdin, "q")
		_ = s.stdin.Close()

		select {
		case <-s.done:
		case <-time.After(stopGrace):
			_ = s.cmd.Process.Kill()
			s.stopErr = errors.New("ffmpeg did not stop in time")
		}
	})
	return s.stopErr
}

// Release kills ffmpeg if it is still running and waits for the output to
// close.
func (s *ffmpegStream) Release() error {
	s.releaseOnce.Do(func() {
		select {
		case <-s.done:
			return
		default:
		}
		_ = s.stdin.Close()
		_ = s.cmd.Process.Kill()
	})
	<-s.done
	return nil
}
