// Package session sequences an interview: prompts, one recorded and
// transcribed answer per prompt, and the final transcript.
package session

import (
	"errors"
	"fmt"
	"slices"

	"voice-interview/internal/app/model"
	"voice-interview/internal/client/capture"
)

var (
	// ErrNoPrompts is returned when an interview is started without prompts
	ErrNoPrompts = errors.New("no prompts available")
	// ErrInvalidTransition is returned for an event the current state does
	// not accept
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrAnswerNotFinalized is returned when advancing past a prompt that
	// has no transcribed answer
	ErrAnswerNotFinalized = errors.New("current answer has not been transcribed")
)

// Phase is the coarse position of a session
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseActive
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not started"
	case PhaseActive:
		return "active"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// CaptureState tracks the current prompt's recording while the session is
// active
type CaptureState int

const (
	CaptureIdle CaptureState = iota
	CaptureRecording
	CaptureCaptured
	CaptureSubmitting
	CaptureSubmitted
)

func (c CaptureState) String() string {
	switch c {
	case CaptureIdle:
		return "idle"
	case CaptureRecording:
		return "recording"
	case CaptureCaptured:
		return "captured"
	case CaptureSubmitting:
		return "submitting"
	case CaptureSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("capture(%d)", int(c))
	}
}

// Answer is a transcribed recording. PromptText is the prompt as it read
// when the answer was submitted.
type Answer struct {
	Audio      capture.Blob
	Text       string
	PromptText string
}

// Session is one run through the prompts. Values are treated as
// immutable; Apply returns a new one.
type Session struct {
	Prompts []model.Prompt
	Index   int
	Answers []*Answer
	Phase   Phase
	Capture CaptureState
	// Take is the latest finished recording for the current prompt
	Take *capture.Blob
}

// Current returns the prompt being answered
func (s Session) Current() (model.Prompt, bool) {
	if s.Phase != PhaseActive || s.Index < 0 || s.Index >= len(s.Prompts) {
		return model.Prompt{}, false
	}
	return s.Prompts[s.Index], true
}

// Finalized reports whether prompt i has a transcribed answer
func (s Session) Finalized(i int) bool {
	return i >= 0 && i < len(s.Answers) && s.Answers[i] != nil
}

// IsLast reports whether the current prompt is the final one
func (s Session) IsLast() bool {
	return s.Index == len(s.Prompts)-1
}

// Event is an input to Apply
type Event interface {
	event()
}

// Started begins a session with the resolved prompts
type Started struct {
	Prompts []model.Prompt
}

// RecordingStarted marks a live capture for the current prompt
type RecordingStarted struct{}

// RecordingStopped delivers the finalized recording
type RecordingStopped struct {
	Audio capture.Blob
}

// SubmitStarted marks the take as in flight for transcription
type SubmitStarted struct{}

// SubmitSucceeded delivers the transcription of the take
type SubmitSucceeded struct {
	Text string
}

// SubmitFailed returns an in-flight take to Captured
type SubmitFailed struct {
	Err error
}

// Advanced moves to the next prompt, or finishes after the last one
type Advanced struct{}

// Reset discards the session
type Reset struct{}

func (Started) event()          {}
func (RecordingStarted) event() {}
func (RecordingStopped) event() {}
func (SubmitStarted) event()    {}
func (SubmitSucceeded) event()  {}
func (SubmitFailed) event()     {}
func (Advanced) event()         {}
func (Reset) event()            {}

// Apply returns the session that results from ev. On error s is returned
// unchanged.
func Apply(s Session, ev Event) (Session, error) {
	switch e := ev.(type) {
	case Reset:
		return Session{}, nil

	case Started:
		if s.Phase != PhaseNotStarted {
			return s, invalid(s, ev)
		}
		if len(e.Prompts) == 0 {
			return s, ErrNoPrompts
		}
		return Session{
			Prompts: slices.Clone(e.Prompts),
			Answers: make([]*Answer, len(e.Prompts)),
			Phase:   PhaseActive,
			Capture: CaptureIdle,
		}, nil
	}

	if s.Phase != PhaseActive {
		return s, invalid(s, ev)
	}

	next := s
	switch e := ev.(type) {
	case RecordingStarted:
		switch s.Capture {
		case CaptureIdle, CaptureCaptured, CaptureSubmitted:
		default:
			return s, invalid(s, ev)
		}
		// a new recording drops the previous take
		next.Capture = CaptureRecording
		next.Take = nil

	case RecordingStopped:
		if s.Capture != CaptureRecording {
			return s, invalid(s, ev)
		}
		audio := e.Audio
		next.Capture = CaptureCaptured
		next.Take = &audio

	case SubmitStarted:
		if s.Capture != CaptureCaptured || s.Take == nil {
			return s, invalid(s, ev)
		}
		next.Capture = CaptureSubmitting

	case SubmitSucceeded:
		if s.Capture != CaptureSubmitting {
			return s, invalid(s, ev)
		}
		next.Answers = slices.Clone(s.Answers)
		next.Answers[s.Index] = &Answer{
			Audio:      *s.Take,
			Text:       e.Text,
			PromptText: s.Prompts[s.Index].Text,
		}
		next.Capture = CaptureSubmitted

	case SubmitFailed:
		if s.Capture != CaptureSubmitting {
			return s, invalid(s, ev)
		}
		next.Capture = CaptureCaptured

	case Advanced:
		if !s.Finalized(s.Index) {
			return s, ErrAnswerNotFinalized
		}
		if s.Capture == CaptureRecording || s.Capture == CaptureSubmitting {
			return s, invalid(s, ev)
		}
		next.Capture = CaptureIdle
		next.Take = nil
		if s.IsLast() {
			next.Phase = PhaseFinished
		} else {
			next.Index++
		}

	default:
		return s, fmt.Errorf("%w: unknown event %T", ErrInvalidTransition, ev)
	}
	return next, nil
}

func invalid(s Session, ev Event) error {
	if s.Phase == PhaseActive {
		return fmt.Errorf("%w: %T while %s", ErrInvalidTransition, ev, s.Capture)
	}
	return fmt.Errorf("%w: %T while %s", ErrInvalidTransition, ev, s.Phase)
}
