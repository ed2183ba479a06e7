package tui

// StartedMsg reports the outcome of starting the interview.
type StartedMsg struct {
	Err error
}

// SessionChangedMsg signals that the controller's session moved, including
// transitions the user did not trigger such as an auto-stop.
type SessionChangedMsg struct{}

// RecordingToggledMsg reports the outcome of starting or stopping a recording.
type RecordingToggledMsg struct {
	Err error
}

// SubmittedMsg reports the outcome of a transcription request.
type SubmittedMsg struct {
	Err error
}

// TranscriptSavedMsg reports where the transcript was written.
type TranscriptSavedMsg struct {
	Path string
	Err  error
}

// ElapsedTickMsg refreshes the recording timer.
type ElapsedTickMsg struct{}

// ClearErrorMsg clears a transient error after a timeout.
type ClearErrorMsg struct{}
