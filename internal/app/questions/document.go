package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"voice-interview/internal/app/metrics"
	"voice-interview/internal/app/model"
)

// MalformedConfigurationError reports a prompts document that exists but
// cannot be used. It is logged and never surfaced to clients.
type MalformedConfigurationError struct {
	Path string
	Err  error
}

func (e *MalformedConfigurationError) Error() string {
	return fmt.Sprintf("malformed prompts document %s: %v", e.Path, e.Err)
}

func (e *MalformedConfigurationError) Unwrap() error {
	return e.Err
}

// DocumentSource reads an explicit ordered prompt list from a JSON document
// shaped like {"items": [{"id": 1, "text": "...", "audioUrl": "..."}]}.
type DocumentSource struct {
	path     string
	logger   *slog.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
}

// NewDocumentSource creates a document tier reading path
func NewDocumentSource(path string, logger *slog.Logger, m *metrics.Metrics) *DocumentSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentSource{
		path:     path,
		logger:   logger,
		metrics:  m,
		validate: validator.New(),
	}
}

// Name implements Source
func (s *DocumentSource) Name() string { return "document" }

// Attempt implements Source. A missing document is silently absent; a
// malformed one is logged and absent.
func (s *DocumentSource) Attempt(context.Context) ([]model.Prompt, bool) {
	prompts, err := s.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false
		}
		s.logger.Warn("cannot use prompts document, falling through",
			"path", s.path,
			"error", err,
		)
		var malformed *MalformedConfigurationError
		if errors.As(err, &malformed) {
			s.metrics.RecordMalformedDocument()
		}
		return nil, false
	}
	return prompts, len(prompts) > 0
}

// Load reads and validates the document. Parse and shape problems are
// returned as *MalformedConfigurationError.
func (s *DocumentSource) Load() ([]model.Prompt, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, s.malformed(err)
	}

	items := bytes.TrimSpace(doc.Items)
	if len(items) == 0 || items[0] != '[' {
		return nil, s.malformed(errors.New(`"items" is not a list`))
	}

	var prompts []model.Prompt
	if err := json.Unmarshal(items, &prompts); err != nil {
		return nil, s.malformed(err)
	}

	for i := range prompts {
		if err := s.validate.Struct(prompts[i]); err != nil {
			return nil, s.malformed(fmt.Errorf("item %d: %w", i, err))
		}
	}

	return prompts, nil
}

func (s *DocumentSource) malformed(err error) error {
	return &MalformedConfigurationError{Path: s.path, Err: err}
}
