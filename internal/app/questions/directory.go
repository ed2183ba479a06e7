package questions

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"voice-interview/internal/app/model"
)

// AudioExtensions are the prompt audio file extensions recognized by the
// directory tier.
var AudioExtensions = []string{".mp3", ".wav", ".m4a", ".aac", ".ogg", ".webm"}

// DirectorySource synthesizes one prompt per recognized audio file found in
// a directory, ordered by filename.
type DirectorySource struct {
	dir       string
	urlPrefix string
}

// NewDirectorySource creates a directory tier scanning dir. Files are
// published under urlPrefix.
func NewDirectorySource(dir, urlPrefix string) *DirectorySource {
	return &DirectorySource{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}
}

// Name implements Source
func (s *DirectorySource) Name() string { return "directory" }

// Attempt implements Source
func (s *DirectorySource) Attempt(context.Context) ([]model.Prompt, bool) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, false
	}

	names := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), !e.IsDir() && IsAudioFile(e.Name())
	})
	if len(names) == 0 {
		return nil, false
	}
	sort.Strings(names)

	prompts := lo.Map(names, func(name string, i int) model.Prompt {
		return model.Prompt{
			ID:       i + 1,
			Text:     promptTextFor(i),
			AudioURL: s.urlPrefix + "/" + url.PathEscape(name),
		}
	})
	return prompts, true
}

// IsAudioFile reports whether name has a recognized audio extension
func IsAudioFile(name string) bool {
	return lo.Contains(AudioExtensions, strings.ToLower(filepath.Ext(name)))
}
