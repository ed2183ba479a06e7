package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"voice-interview/internal/app/model"
	"voice-interview/internal/client/capture"
	"voice-interview/internal/client/session"
)

// fakeController applies events to a real Session without I/O
type fakeController struct {
	s         session.Session
	startErr  error
	submitErr error
	elapsed   time.Duration
	resets    int
}

func (f *fakeController) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	var err error
	f.s, err = session.Apply(f.s, session.Started{Prompts: []model.Prompt{
		{ID: 1, Text: "Tell us about yourself.", AudioURL: "/questions/intro.mp3"},
		{ID: 2, Text: "What are you proud of?"},
	}})
	return err
}

func (f *fakeController) CodecNote() string { return "Recording in WebM/Opus." }

func (f *fakeController) ToggleRecording(context.Context) error {
	var err error
	if f.s.Capture == session.CaptureRecording {
		f.s, err = session.Apply(f.s, session.RecordingStopped{Audio: capture.Blob{Data: []byte("a")}})
		return err
	}
	f.s, err = session.Apply(f.s, session.RecordingStarted{})
	return err
}

func (f *fakeController) Submit(context.Context) error {
	var err error
	if f.s, err = session.Apply(f.s, session.SubmitStarted{}); err != nil {
		return err
	}
	if f.submitErr != nil {
		f.s, _ = session.Apply(f.s, session.SubmitFailed{Err: f.submitErr})
		return f.submitErr
	}
	f.s, err = session.Apply(f.s, session.SubmitSucceeded{Text: "answer text"})
	return err
}

func (f *fakeController) Advance() error {
	var err error
	f.s, err = session.Apply(f.s, session.Advanced{})
	return err
}

func (f *fakeController) Transcript() (string, error) { return session.BuildTranscript(f.s), nil }
func (f *fakeController) Reset()                      { f.resets++; f.s = session.Session{} }
func (f *fakeController) Snapshot() session.Session   { return f.s }
func (f *fakeController) Elapsed() time.Duration      { return f.elapsed }
func (f *fakeController) Limit() time.Duration        { return capture.DefaultLimit }

func (f *fakeController) CanSubmit() bool {
	_, err := session.Apply(f.s, session.SubmitStarted{})
	return err == nil
}

func (f *fakeController) CanAdvance() bool {
	_, err := session.Apply(f.s, session.Advanced{})
	return err == nil
}

func key(k string) tea.KeyMsg {
	switch k {
	case KeyEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case KeySpace:
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case KeyCtrlC:
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// press sends a key and runs the resulting command, feeding its message back
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	updated, cmd := m.Update(key(k))
	m = updated.(Model)
	if cmd == nil {
		return m
	}
	msg := cmd()
	if _, isTick := msg.(ElapsedTickMsg); isTick {
		return m
	}
	updated, _ = m.Update(msg)
	return updated.(Model)
}

func newModel(t *testing.T) (Model, *fakeController) {
	t.Helper()
	fc := &fakeController{}
	output := filepath.Join(t.TempDir(), session.DefaultTranscriptFile)
	m := New(context.Background(), fc, output)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model), fc
}

func TestModel_Welcome(t *testing.T) {
	m, _ := newModel(t)

	view := m.View()
	assert.Contains(t, view, "VOICE INTERVIEW")
	assert.Contains(t, view, "Recording in WebM/Opus.")
	assert.Contains(t, view, "Enter")
}

func TestModel_FullInterview(t *testing.T) {
	m, fc := newModel(t)

	m = press(t, m, KeyEnter)
	require.Equal(t, session.PhaseActive, m.session.Phase)
	assert.Contains(t, m.View(), "Question 1 of 2")
	assert.Contains(t, m.View(), "/questions/intro.mp3")

	m = press(t, m, KeySpace)
	assert.True(t, m.recording())
	fc.elapsed = 12 * time.Second
	updated, cmd := m.Update(ElapsedTickMsg{})
	m = updated.(Model)
	assert.NotNil(t, cmd, "ticks continue while recording")
	assert.Contains(t, m.View(), "00:12 / 03:00")

	m = press(t, m, KeyNext)
	assert.Equal(t, 0, m.session.Index, "advance is ignored before transcription")

	m = press(t, m, KeySpace)
	assert.Equal(t, session.CaptureCaptured, m.session.Capture)
	assert.Contains(t, m.View(), "Transcribe")

	m = press(t, m, KeySubmit)
	assert.Equal(t, session.CaptureSubmitted, m.session.Capture)
	assert.Contains(t, m.View(), "answer text")

	m = press(t, m, KeyNext)
	assert.Equal(t, 1, m.session.Index)

	m = press(t, m, KeyRecord)
	m = press(t, m, KeyRecord)
	m = press(t, m, KeySubmit)
	assert.Contains(t, m.View(), "Finish")
	m = press(t, m, KeyNext)

	require.Equal(t, session.PhaseFinished, m.session.Phase)
	assert.Contains(t, m.View(), "Prompt 2: What are you proud of?")

	m = press(t, m, KeySave)
	require.NotEmpty(t, m.savedPath)
	saved, err := os.ReadFile(m.savedPath)
	require.NoError(t, err)
	assert.Equal(t, m.transcript, string(saved))
	assert.Contains(t, m.View(), "Saved to")

	m = press(t, m, KeyReset)
	assert.Equal(t, session.PhaseNotStarted, m.session.Phase)
	assert.Equal(t, 1, fc.resets)
}

func TestModel_SubmitFailureShowsError(t *testing.T) {
	m, fc := newModel(t)
	fc.submitErr = errors.New("Rate limit reached")

	m = press(t, m, KeyEnter)
	m = press(t, m, KeySpace)
	m = press(t, m, KeySpace)
	m = press(t, m, KeySubmit)

	assert.Equal(t, session.CaptureCaptured, m.session.Capture)
	assert.Contains(t, m.View(), "Rate limit reached")
	assert.True(t, fc.CanSubmit(), "retry stays available")

	updated, _ := m.Update(ClearErrorMsg{})
	assert.NotContains(t, updated.(Model).View(), "Rate limit reached")
}

func TestModel_StartFailure(t *testing.T) {
	m, fc := newModel(t)
	fc.startErr = session.ErrNoPrompts

	m = press(t, m, KeyEnter)
	assert.Equal(t, session.PhaseNotStarted, m.session.Phase)
	assert.Contains(t, m.View(), session.ErrNoPrompts.Error())
}

func TestModel_SessionChangedPicksUpAutoStop(t *testing.T) {
	m, fc := newModel(t)
	m = press(t, m, KeyEnter)
	m = press(t, m, KeySpace)

	// the recorder stops on its own at the limit
	fc.s, _ = session.Apply(fc.s, session.RecordingStopped{Audio: capture.Blob{Data: []byte("x")}})
	fc.elapsed = capture.DefaultLimit

	updated, _ := m.Update(SessionChangedMsg{})
	m = updated.(Model)
	assert.Equal(t, session.CaptureCaptured, m.session.Capture)
	assert.Contains(t, m.View(), "03:00 / 03:00")
}

func TestModel_QuitWhileRecordingReleases(t *testing.T) {
	m, fc := newModel(t)
	m = press(t, m, KeyEnter)
	m = press(t, m, KeySpace)

	_, cmd := m.Update(key(KeyCtrlC))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, 1, fc.resets)
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrapText("one two three", 8))
	assert.Equal(t, []string{"a", "", "b"}, wrapText("a\n\nb", 10))
}
