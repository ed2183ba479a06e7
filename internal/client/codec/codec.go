// Package codec selects the audio encoding used for answer recordings.
package codec

import "strings"

// Media types in descending order of preference. Opus in WebM first, then
// generic WebM, Opus in Ogg, generic Ogg, and MP4/AAC as a last resort.
const (
	WebMOpus = "audio/webm;codecs=opus"
	WebM     = "audio/webm"
	OggOpus  = "audio/ogg;codecs=opus"
	Ogg      = "audio/ogg"
	MP4      = "audio/mp4"
	AAC      = "audio/aac"
)

// DefaultPreferences is the preference list used for recordings
var DefaultPreferences = []string{WebMOpus, WebM, OggOpus, Ogg, MP4, AAC}

// Negotiate returns the first entry of prefs that supported accepts, or ""
// when none does. It never returns a value outside prefs.
func Negotiate(prefs []string, supported func(mimeType string) bool) string {
	if supported == nil {
		return ""
	}
	for _, m := range prefs {
		if supported(m) {
			return m
		}
	}
	return ""
}

// Extension maps a media type to the filename extension used when the
// recording is uploaded.
func Extension(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "ogg"):
		return ".ogg"
	case strings.Contains(mimeType, "mp4"), strings.Contains(mimeType, "aac"):
		return ".mp4"
	default:
		return ".webm"
	}
}

// Describe returns the note shown to the user when a session starts
func Describe(mimeType string) string {
	switch {
	case mimeType == "":
		return "Audio recording is not supported on this system."
	case strings.Contains(mimeType, "webm"):
		return "Recording in WebM/Opus."
	default:
		return "Recording in " + mimeType + "."
	}
}

// Container returns the container part of a media type, without codec
// parameters: "audio/webm;codecs=opus" yields "webm".
func Container(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	_, sub, _ := strings.Cut(strings.TrimSpace(base), "/")
	return sub
}
