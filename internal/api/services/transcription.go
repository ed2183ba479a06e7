package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"voice-interview/internal/app/api/provider"
	"voice-interview/internal/app/metrics"
)

// ErrMissingFile is returned when a transcription request carries no audio
var ErrMissingFile = errors.New("no audio file uploaded")

// ErrTestNotSupported is returned by TestKey when the configured provider
// cannot list models
var ErrTestNotSupported = errors.New("provider does not support credential checks")

// Upload is one recorded answer as received from the client
type Upload struct {
	Filename string
	MimeType string
	Body     io.Reader
}

// ProxyConfig configures TranscriptionProxy
type ProxyConfig struct {
	TempDir  string
	Language string
	Model    string
}

// TranscriptionProxy persists each upload to a scoped temp file, hands it to
// a freshly built provider and returns the trimmed text.
type TranscriptionProxy struct {
	factory provider.Factory
	config  ProxyConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewTranscriptionProxy creates a TranscriptionProxy
func NewTranscriptionProxy(factory provider.Factory, config ProxyConfig, logger *slog.Logger, m *metrics.Metrics) *TranscriptionProxy {
	if config.TempDir == "" {
		config.TempDir = os.TempDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TranscriptionProxy{
		factory: factory,
		config:  config,
		logger:  logger,
		metrics: m,
	}
}

// Transcribe implements TranscriptionService. Failures of the capability
// are returned as *provider.TranscriptionServiceError.
func (p *TranscriptionProxy) Transcribe(ctx context.Context, upload *Upload) (text string, err error) {
	if upload == nil || upload.Body == nil {
		return "", ErrMissingFile
	}

	start := time.Now()
	var written int64
	defer func() {
		failure := ""
		if err != nil {
			failure = "server_error"
			if svcErr, ok := provider.AsServiceError(err); ok {
				failure = svcErr.Code
			}
		}
		p.metrics.RecordTranscription(time.Since(start).Seconds(), written, failure)
	}()

	tp, err := p.factory.Create(ctx)
	if err != nil {
		return "", err
	}

	path := filepath.Join(p.config.TempDir, "upload-"+uuid.New().String()+UploadExtension(upload.Filename, upload.MimeType))
	written, err = writeTempFile(path, upload.Body)
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			p.logger.Warn("Failed to remove temporary upload", "path", path, "error", rmErr)
		}
	}()
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}

	raw, err := tp.Transcribe(ctx, &provider.TranscriptionRequest{
		InputFilePath: path,
		Language:      p.config.Language,
		Model:         p.config.Model,
	})
	if err != nil {
		if _, ok := provider.AsServiceError(err); !ok {
			err = provider.NewServiceError(tp.Name(), 0, "", err.Error(), err)
		}
		p.logger.Error("Transcription failed",
			"provider", tp.Name(),
			"bytes", written,
			"error", err,
		)
		return "", err
	}

	p.logger.Info("Transcription completed",
		"provider", tp.Name(),
		"bytes", written,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return strings.TrimSpace(raw), nil
}

// TestKey checks the configured credential by listing models and returns
// at most one model id as a sample.
func (p *TranscriptionProxy) TestKey(ctx context.Context) ([]string, error) {
	tp, err := p.factory.Create(ctx)
	if err != nil {
		return nil, err
	}

	lister, ok := tp.(provider.ModelLister)
	if !ok {
		return nil, ErrTestNotSupported
	}

	ids, err := lister.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) > 1 {
		ids = ids[:1]
	}
	return ids, nil
}

// UploadExtension picks the temp file extension: the one of the original
// filename, else .mp4 when the media type mentions mp4, else .webm.
func UploadExtension(filename, mimeType string) string {
	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}
	if strings.Contains(mimeType, "mp4") {
		return ".mp4"
	}
	return ".webm"
}

func writeTempFile(path string, body io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, err
}
