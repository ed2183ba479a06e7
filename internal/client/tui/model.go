// Package tui is the interactive terminal front end of the interview client.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"voice-interview/internal/client/capture"
	"voice-interview/internal/client/session"
	"voice-interview/internal/client/ui"
)

const tickInterval = 200 * time.Millisecond

// Controller is the session controller the model drives
type Controller interface {
	Start(ctx context.Context) error
	CodecNote() string
	ToggleRecording(ctx context.Context) error
	Submit(ctx context.Context) error
	Advance() error
	Transcript() (string, error)
	Reset()
	Snapshot() session.Session
	CanSubmit() bool
	CanAdvance() bool
	Elapsed() time.Duration
	Limit() time.Duration
}

// Model is the root bubbletea model for the interview TUI.
type Model struct {
	ctx        context.Context
	controller Controller
	output     string

	session    session.Session
	note       string
	starting   bool
	elapsed    time.Duration
	transcript string
	savedPath  string

	errorMessage string
	width        int
	height       int
}

// New creates a model. Transcripts are saved to output.
func New(ctx context.Context, controller Controller, output string) Model {
	if output == "" {
		output = session.DefaultTranscriptFile
	}
	return Model{
		ctx:        ctx,
		controller: controller,
		output:     output,
		note:       controller.CodecNote(),
	}
}

// Init has nothing to load until the user starts.
func (m Model) Init() tea.Cmd {
	return nil
}

func startCmd(ctx context.Context, c Controller) tea.Cmd {
	return func() tea.Msg {
		return StartedMsg{Err: c.Start(ctx)}
	}
}

func toggleCmd(ctx context.Context, c Controller) tea.Cmd {
	return func() tea.Msg {
		return RecordingToggledMsg{Err: c.ToggleRecording(ctx)}
	}
}

func submitCmd(ctx context.Context, c Controller) tea.Cmd {
	return func() tea.Msg {
		return SubmittedMsg{Err: c.Submit(ctx)}
	}
}

func saveCmd(path, transcript string) tea.Cmd {
	return func() tea.Msg {
		return TranscriptSavedMsg{Path: path, Err: session.WriteTranscript(path, transcript)}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return ElapsedTickMsg{}
	})
}

func clearErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case StartedMsg:
		m.starting = false
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		m.session = m.controller.Snapshot()
		return m, nil

	case SessionChangedMsg:
		wasRecording := m.recording()
		m.session = m.controller.Snapshot()
		m.elapsed = m.controller.Elapsed()
		if !wasRecording && m.recording() {
			return m, tickCmd()
		}
		return m, nil

	case RecordingToggledMsg:
		m.session = m.controller.Snapshot()
		m.elapsed = m.controller.Elapsed()
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		if m.recording() {
			return m, tickCmd()
		}
		return m, nil

	case ElapsedTickMsg:
		m.elapsed = m.controller.Elapsed()
		if m.recording() {
			return m, tickCmd()
		}
		return m, nil

	case SubmittedMsg:
		m.session = m.controller.Snapshot()
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		return m, nil

	case TranscriptSavedMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		m.savedPath = msg.Path
		return m, nil

	case ClearErrorMsg:
		m.errorMessage = ""
		return m, nil
	}

	return m, nil
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.errorMessage = err.Error()
	return m, clearErrorCmd()
}

func (m Model) recording() bool {
	return m.session.Phase == session.PhaseActive && m.session.Capture == session.CaptureRecording
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyQuitUpper, KeyCtrlC:
		if m.recording() {
			// releases the microphone
			m.controller.Reset()
		}
		return m, tea.Quit

	case KeyEnter:
		if m.session.Phase == session.PhaseNotStarted && !m.starting {
			m.starting = true
			m.errorMessage = ""
			return m, startCmd(m.ctx, m.controller)
		}
		return m, nil

	case KeySpace, KeyRecord:
		if m.session.Phase != session.PhaseActive || m.session.Capture == session.CaptureSubmitting {
			return m, nil
		}
		m.errorMessage = ""
		return m, toggleCmd(m.ctx, m.controller)

	case KeySubmit:
		if !m.controller.CanSubmit() {
			return m, nil
		}
		m.errorMessage = ""
		m.session.Capture = session.CaptureSubmitting
		return m, submitCmd(m.ctx, m.controller)

	case KeyNext:
		if !m.controller.CanAdvance() {
			return m, nil
		}
		if err := m.controller.Advance(); err != nil {
			return m.fail(err)
		}
		m.session = m.controller.Snapshot()
		m.elapsed = 0
		if m.session.Phase == session.PhaseFinished {
			transcript, err := m.controller.Transcript()
			if err != nil {
				return m.fail(err)
			}
			m.transcript = transcript
		}
		return m, nil

	case KeySave:
		if m.session.Phase != session.PhaseFinished {
			return m, nil
		}
		return m, saveCmd(m.output, m.transcript)

	case KeyReset:
		if m.session.Phase != session.PhaseFinished {
			return m, nil
		}
		m.controller.Reset()
		m.session = m.controller.Snapshot()
		m.transcript = ""
		m.savedPath = ""
		m.elapsed = 0
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	var sections []string

	sections = append(sections, ui.TitleStyle.Render("VOICE INTERVIEW"))
	sections = append(sections, m.divider())

	switch m.session.Phase {
	case session.PhaseNotStarted:
		sections = append(sections, m.renderWelcome())
	case session.PhaseActive:
		sections = append(sections, m.renderPrompt())
	case session.PhaseFinished:
		sections = append(sections, m.renderTranscript())
	}

	sections = append(sections, m.divider())

	if m.errorMessage != "" {
		sections = append(sections, m.renderErrorBar())
	}

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) divider() string {
	width := m.width
	if width <= 0 {
		width = 60
	}
	return ui.DividerStyle.Render(strings.Repeat("─", width))
}

func (m Model) renderWelcome() string {
	if m.starting {
		return ui.SpinnerStyle.Render("Loading questions...")
	}
	return ui.DimStyle.Render(m.note) + "\n\nPress Enter to begin."
}

func (m Model) renderPrompt() string {
	s := m.session
	prompt, _ := s.Current()

	var lines []string
	lines = append(lines, ui.PromptLabelStyle.Render(fmt.Sprintf("Question %d of %d", s.Index+1, len(s.Prompts))))
	for _, line := range wrapText(prompt.Text, m.textWidth()) {
		lines = append(lines, ui.PromptTextStyle.Render(line))
	}
	if prompt.AudioURL != "" {
		lines = append(lines, ui.DimStyle.Render("Audio: "+prompt.AudioURL))
	}
	lines = append(lines, "", m.renderStatus())

	if answer := s.Answers[s.Index]; answer != nil {
		text := answer.Text
		if text == "" {
			text = "(empty transcription)"
		}
		lines = append(lines, "", ui.PromptLabelStyle.Render("Answer"))
		for _, line := range wrapText(text, m.textWidth()) {
			lines = append(lines, ui.AnswerTextStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus() string {
	timer := capture.FormatElapsed(m.elapsed) + " / " + capture.FormatElapsed(m.controller.Limit())

	switch m.session.Capture {
	case session.CaptureRecording:
		return ui.RecordingDotStyle.Render("● REC") + "  " + timer
	case session.CaptureCaptured:
		return ui.IdleDotStyle.Render("○ CAPTURED") + "  " + ui.StatusStyle.Render(timer)
	case session.CaptureSubmitting:
		return ui.SpinnerStyle.Render("⟳ Transcribing...")
	case session.CaptureSubmitted:
		return ui.IdleDotStyle.Render("✓ TRANSCRIBED")
	default:
		return ui.IdleDotStyle.Render("○ IDLE")
	}
}

func (m Model) renderTranscript() string {
	lines := []string{ui.PromptLabelStyle.Render("Transcript"), ""}
	lines = append(lines, wrapText(m.transcript, m.textWidth())...)
	if m.savedPath != "" {
		lines = append(lines, "", ui.PendingStyle.Render("Saved to "+m.savedPath))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderErrorBar() string {
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
}

func (m Model) renderFooter() string {
	var parts []string
	key := func(k, desc string) {
		parts = append(parts, ui.FooterKeyStyle.Render(k)+ui.FooterDescStyle.Render(" "+desc))
	}

	switch m.session.Phase {
	case session.PhaseNotStarted:
		key("Enter", "Start")
	case session.PhaseActive:
		if m.recording() {
			key("Space", "Stop")
		} else if m.session.Capture != session.CaptureSubmitting {
			key("Space", "Record")
		}
		if m.controller.CanSubmit() {
			key("t", "Transcribe")
		}
		if m.controller.CanAdvance() {
			if m.session.IsLast() {
				key("n", "Finish")
			} else {
				key("n", "Next")
			}
		}
	case session.PhaseFinished:
		key("w", "Save")
		key("x", "Restart")
	}

	key("q", "Quit")
	return strings.Join(parts, "  ")
}

func (m Model) textWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
