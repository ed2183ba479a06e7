// Package questions resolves the ordered interview prompt list from a tiered
// set of sources: an explicit prompts document, a directory of prompt audio
// files, and a hardcoded fallback.
package questions

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"voice-interview/internal/app/metrics"
	"voice-interview/internal/app/model"
)

// Fixed prompt texts used when prompts are synthesized or hardcoded.
const (
	IntroductionText = "Briefly introduce yourself and your experience. Highlight the skills relevant to the role."
	AchievementText  = "Which professional achievement are you most proud of, and why? Describe your own contribution."
)

// Source is one resolution tier. Attempt reports false when the tier has
// nothing to offer; it never returns an error to the resolver.
type Source interface {
	Name() string
	Attempt(ctx context.Context) ([]model.Prompt, bool)
}

// Resolver folds over its sources and returns the first present result.
type Resolver struct {
	sources  []Source
	fallback Source
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewResolver builds the standard tiers rooted at publicDir:
// publicDir/questions/questions.json, then audio files in publicDir/questions.
func NewResolver(publicDir string, logger *slog.Logger, m *metrics.Metrics) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Join(publicDir, "questions")

	return NewResolverWithSources(logger, m,
		NewDocumentSource(filepath.Join(dir, "questions.json"), logger, m),
		NewDirectorySource(dir, "/questions"),
	)
}

// NewResolverWithSources builds a resolver over explicit sources. The
// hardcoded fallback is always appended last.
func NewResolverWithSources(logger *slog.Logger, m *metrics.Metrics, sources ...Source) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		sources:  sources,
		fallback: FallbackSource{},
		logger:   logger,
		metrics:  m,
	}
}

// Resolve returns a non-empty ordered prompt list. It never fails.
func (r *Resolver) Resolve(ctx context.Context) []model.Prompt {
	for _, src := range r.sources {
		if ctx.Err() != nil {
			break
		}
		prompts, ok := r.attempt(ctx, src)
		if ok && len(prompts) > 0 {
			r.metrics.RecordResolution(src.Name())
			return prompts
		}
	}

	prompts, _ := r.fallback.Attempt(ctx)
	r.metrics.RecordResolution(r.fallback.Name())
	return prompts
}

func (r *Resolver) attempt(ctx context.Context, src Source) (prompts []model.Prompt, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("question source failed",
				"source", src.Name(),
				"error", fmt.Sprint(rec),
			)
			prompts, ok = nil, false
		}
	}()
	return src.Attempt(ctx)
}

// FallbackSource always yields the two fixed prompts without audio.
type FallbackSource struct{}

// Name implements Source
func (FallbackSource) Name() string { return "fallback" }

// Attempt implements Source
func (FallbackSource) Attempt(context.Context) ([]model.Prompt, bool) {
	return []model.Prompt{
		{ID: 1, Text: IntroductionText},
		{ID: 2, Text: AchievementText},
	}, true
}

// promptTextFor pairs index 0 with the introduction and every later index
// with the achievement question.
func promptTextFor(index int) string {
	if index == 0 {
		return IntroductionText
	}
	return AchievementText
}
