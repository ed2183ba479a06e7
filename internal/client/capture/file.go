package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"voice-interview/internal/client/codec"
)

const fileChunkSize = 16 * 1024

// FileDevice replays pre-recorded answers, one file per recording, in
// order. It supports exactly the media type family of the next file.
type FileDevice struct {
	mu    sync.Mutex
	files []string
	next  int
}

// NewFileDevice creates a device replaying files in order
func NewFileDevice(files ...string) *FileDevice {
	return &FileDevice{files: files}
}

// Remaining returns how many recordings are left
func (d *FileDevice) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.files) - d.next
}

// Available fails once every file has been replayed
func (d *FileDevice) Available() error {
	if d.Remaining() <= 0 {
		return fmt.Errorf("%w: no recordings left to replay", ErrCaptureUnsupported)
	}
	return nil
}

// Supports reports whether mimeType matches the next file's extension
func (d *FileDevice) Supports(mimeType string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.next >= len(d.files) {
		return false
	}
	return codec.Extension(mimeType) == normalizedExt(d.files[d.next])
}

func normalizedExt(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".m4a", ".aac":
		return ".mp4"
	case ".opus":
		return ".ogg"
	default:
		return ext
	}
}

// Open reads the next file and streams it in chunks
func (d *FileDevice) Open(_ context.Context, _ string) (Stream, error) {
	d.mu.Lock()
	if d.next >= len(d.files) {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: no recordings left to replay", ErrCaptureUnsupported)
	}
	path := d.files[d.next]
	d.next++
	d.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("read recording %s: %w", path, err)
	}

	s := &fileStream{
		ch:   make(chan []byte),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.emit(data)
	return s, nil
}

type fileStream struct {
	ch       chan []byte
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// emit sends the whole recording chunk by chunk, then holds the stream
// open until it is stopped.
func (s *fileStream) emit(data []byte) {
	defer close(s.done)
	defer close(s.ch)

	for len(data) > 0 {
		n := min(fileChunkSize, len(data))
		s.ch <- data[:n]
		data = data[n:]
	}
	<-s.stop
}

func (s *fileStream) Chunks() <-chan []byte {
	return s.ch
}

func (s *fileStream) Stop() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *fileStream) Release() error {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	return nil
}
