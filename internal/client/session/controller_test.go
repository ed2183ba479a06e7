package session_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apierrors "voice-interview/internal/api/errors"
	"voice-interview/internal/app/model"
	"voice-interview/internal/client/apiclient"
	"voice-interview/internal/client/capture"
	"voice-interview/internal/client/capture/capturetest"
	"voice-interview/internal/client/codec"
	"voice-interview/internal/client/session"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Questions(ctx context.Context) ([]model.Prompt, error) {
	args := m.Called(ctx)
	prompts, _ := args.Get(0).([]model.Prompt)
	return prompts, args.Error(1)
}

func (m *mockAPI) Transcribe(ctx context.Context, audio capture.Blob, filename string) (string, error) {
	args := m.Called(ctx, audio, filename)
	return args.String(0), args.Error(1)
}

type harness struct {
	api        *mockAPI
	device     *capturetest.Device
	clock      *capturetest.ManualClock
	recorder   *capture.Recorder
	controller *session.Controller
}

func newHarness(t *testing.T, supported ...string) *harness {
	t.Helper()
	if len(supported) == 0 {
		supported = []string{codec.WebMOpus}
	}

	api := &mockAPI{}
	api.Test(t)
	t.Cleanup(func() { api.AssertExpectations(t) })

	device := capturetest.NewDevice(supported...)
	clock := capturetest.NewManualClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	recorder := capture.NewRecorder(device, capture.Options{Clock: clock})

	return &harness{
		api:        api,
		device:     device,
		clock:      clock,
		recorder:   recorder,
		controller: session.NewController(api, recorder, nil),
	}
}

// record captures one answer consisting of data
func (h *harness) record(t *testing.T, data string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.controller.ToggleRecording(ctx))
	h.device.LastStream().Emit([]byte(data))
	h.clock.Advance(3 * time.Second)
	require.NoError(t, h.controller.ToggleRecording(ctx))
	require.Equal(t, session.CaptureCaptured, h.controller.Snapshot().Capture)
}

func blob(data string) capture.Blob {
	return capture.Blob{Data: []byte(data), MimeType: codec.WebMOpus}
}

func TestController_FullInterview(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.api.On("Questions", mock.Anything).
		Return([]model.Prompt{{ID: 1, Text: "A"}, {ID: 2, Text: "B"}}, nil).Once()
	h.api.On("Transcribe", mock.Anything, blob("first"), "answer1.webm").Return("foo", nil).Once()
	h.api.On("Transcribe", mock.Anything, blob("second"), "answer2.webm").Return("bar", nil).Once()

	var changes []session.Session
	h.controller.OnChange(func(s session.Session) { changes = append(changes, s) })

	require.NoError(t, h.controller.Start(ctx))
	assert.Equal(t, "Recording in WebM/Opus.", h.controller.CodecNote())

	h.record(t, "first")
	assert.True(t, h.controller.CanSubmit())
	assert.False(t, h.controller.CanAdvance())
	require.NoError(t, h.controller.Submit(ctx))
	assert.True(t, h.controller.CanAdvance())
	require.NoError(t, h.controller.Advance())

	h.record(t, "second")
	require.NoError(t, h.controller.Submit(ctx))
	require.NoError(t, h.controller.Advance())

	assert.Equal(t, session.PhaseFinished, h.controller.Snapshot().Phase)
	transcript, err := h.controller.Transcript()
	require.NoError(t, err)
	assert.Equal(t, "Prompt 1: A\nAnswer 1: foo\n\nPrompt 2: B\nAnswer 2: bar\n", transcript)
	assert.NotEmpty(t, changes)

	h.controller.Reset()
	assert.Equal(t, session.PhaseNotStarted, h.controller.Snapshot().Phase)
	_, err = h.controller.Transcript()
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
}

func TestController_RetryAfterUpstreamFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	rateLimited := &apiclient.ServiceError{
		StatusCode: http.StatusTooManyRequests,
		Body: apierrors.APIError{
			Summary: apierrors.SummaryTranscription,
			Status:  http.StatusTooManyRequests,
			Code:    "rate_limit_exceeded",
			Message: "Rate limit reached",
		},
	}
	h.api.On("Questions", mock.Anything).Return([]model.Prompt{{ID: 1, Text: "A"}, {ID: 2, Text: "B"}}, nil)
	h.api.On("Transcribe", mock.Anything, blob("take"), "answer1.webm").Return("", rateLimited).Once()
	h.api.On("Transcribe", mock.Anything, blob("take"), "answer1.webm").Return("foo", nil).Once()

	require.NoError(t, h.controller.Start(ctx))
	h.record(t, "take")

	err := h.controller.Submit(ctx)
	var svcErr *apiclient.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusTooManyRequests, svcErr.Body.Status)

	snap := h.controller.Snapshot()
	assert.Equal(t, session.CaptureCaptured, snap.Capture)
	assert.Equal(t, 0, snap.Index)
	require.NotNil(t, snap.Take)
	assert.Equal(t, "take", string(snap.Take.Data), "the recorded audio survives the failure")
	assert.False(t, h.controller.CanAdvance())
	assert.ErrorIs(t, h.controller.Advance(), session.ErrAnswerNotFinalized)
	assert.True(t, h.controller.CanSubmit(), "submission is re-enabled after a failure")

	require.NoError(t, h.controller.Submit(ctx))
	assert.True(t, h.controller.CanAdvance())
	assert.Equal(t, 0, h.controller.Snapshot().Index)
}

func TestController_AutoStopAtCeiling(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.api.On("Questions", mock.Anything).Return([]model.Prompt{{ID: 1, Text: "A"}}, nil)

	require.NoError(t, h.controller.Start(ctx))
	require.NoError(t, h.controller.ToggleRecording(ctx))
	h.device.LastStream().Emit([]byte("long answer"))

	require.Eventually(t, func() bool {
		h.clock.Advance(time.Second)
		return h.controller.Snapshot().Capture == session.CaptureCaptured
	}, 5*time.Second, time.Millisecond)

	assert.Equal(t, capture.DefaultLimit, h.controller.Elapsed())
	assert.Equal(t, "03:00", capture.FormatElapsed(h.controller.Elapsed()))
	h.clock.Advance(time.Minute)
	assert.Equal(t, capture.DefaultLimit, h.controller.Elapsed(), "elapsed stays frozen")

	snap := h.controller.Snapshot()
	require.NotNil(t, snap.Take)
	assert.Equal(t, "long answer", string(snap.Take.Data))

	// toggling after the auto-stop starts a fresh recording
	require.NoError(t, h.controller.ToggleRecording(ctx))
	assert.Equal(t, session.CaptureRecording, h.controller.Snapshot().Capture)
	h.controller.Reset()
	assert.True(t, h.device.LastStream().Released())
}

func TestController_StartWithoutPrompts(t *testing.T) {
	h := newHarness(t)
	h.api.On("Questions", mock.Anything).Return([]model.Prompt{}, nil).Once()

	err := h.controller.Start(context.Background())
	assert.ErrorIs(t, err, session.ErrNoPrompts)
	assert.Equal(t, session.PhaseNotStarted, h.controller.Snapshot().Phase)
}

func TestController_StartLoadFailure(t *testing.T) {
	h := newHarness(t)
	h.api.On("Questions", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	err := h.controller.Start(context.Background())
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, session.PhaseNotStarted, h.controller.Snapshot().Phase)
}

func TestController_RecordingFailuresLeaveIdle(t *testing.T) {
	tests := []struct {
		name      string
		supported string
		openErr   error
		wantErr   error
	}{
		{
			name:      "no supported codec",
			supported: "audio/x-unknown",
			wantErr:   capture.ErrNoSupportedCodec,
		},
		{
			name:      "permission denied",
			supported: codec.WebMOpus,
			openErr:   capturetest.ErrDenied,
			wantErr:   capture.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.supported)
			h.device.OpenErr = tt.openErr
			h.api.On("Questions", mock.Anything).Return([]model.Prompt{{ID: 1, Text: "A"}}, nil)
			require.NoError(t, h.controller.Start(context.Background()))

			err := h.controller.ToggleRecording(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, session.CaptureIdle, h.controller.Snapshot().Capture)
		})
	}
}

func TestController_ReRecordReplacesTake(t *testing.T) {
	h := newHarness(t, codec.OggOpus)
	ctx := context.Background()
	ogg := func(data string) capture.Blob {
		return capture.Blob{Data: []byte(data), MimeType: codec.OggOpus}
	}

	h.api.On("Questions", mock.Anything).Return([]model.Prompt{{ID: 1, Text: "A"}}, nil)
	h.api.On("Transcribe", mock.Anything, ogg("first"), "answer1.ogg").Return("first text", nil).Once()
	h.api.On("Transcribe", mock.Anything, ogg("second"), "answer1.ogg").Return("second text", nil).Once()

	require.NoError(t, h.controller.Start(ctx))
	h.record(t, "first")
	require.NoError(t, h.controller.Submit(ctx))

	h.record(t, "second")
	assert.Equal(t, "first text", h.controller.Snapshot().Answers[0].Text)
	require.NoError(t, h.controller.Submit(ctx))
	assert.Equal(t, "second text", h.controller.Snapshot().Answers[0].Text)

	require.NoError(t, h.controller.Advance())
	transcript, err := h.controller.Transcript()
	require.NoError(t, err)
	assert.Equal(t, "Prompt 1: A\nAnswer 1: second text\n", transcript)
}

func TestController_SubmitRequiresTake(t *testing.T) {
	h := newHarness(t)
	h.api.On("Questions", mock.Anything).Return([]model.Prompt{{ID: 1, Text: "A"}}, nil)
	require.NoError(t, h.controller.Start(context.Background()))

	assert.False(t, h.controller.CanSubmit())
	assert.ErrorIs(t, h.controller.Submit(context.Background()), session.ErrInvalidTransition)
}
