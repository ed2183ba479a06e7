package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"voice-interview/internal/api/dto"
	apierrors "voice-interview/internal/api/errors"
	"voice-interview/internal/api/middleware"
	"voice-interview/internal/api/services"
	"voice-interview/internal/app/api/provider"
)

// AudioField is the multipart field carrying the recorded answer
const AudioField = "audio"

// multipartOverhead is the allowance for form boundaries and headers on
// top of the audio size limit.
const multipartOverhead = 1 << 20

// Messages returned in the "error" field
const (
	msgNoAudio       = "No audio file uploaded"
	msgAudioTooLarge = "Audio file too large"
)

// TranscriptionHandler handles the transcription endpoints
type TranscriptionHandler struct {
	service        services.TranscriptionService
	maxUploadBytes int64
}

// NewTranscriptionHandler creates a new transcription handler accepting
// uploads of at most maxUploadBytes.
func NewTranscriptionHandler(service services.TranscriptionService, maxUploadBytes int64) *TranscriptionHandler {
	return &TranscriptionHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Transcribe handles POST /api/transcribe
//
// Accepts multipart/form-data with the recording in the "audio" field and
// answers {"text": "..."}.
//
// @Summary Transcribe a recorded answer
// @Tags transcription
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Recorded answer"
// @Success 200 {object} dto.TranscriptionResponse "Trimmed transcription, possibly empty"
// @Failure 400 {object} errors.APIError "No audio uploaded, or the capability is misconfigured"
// @Failure 413 {object} errors.APIError "Audio file too large"
// @Failure 500 {object} errors.APIError "Server or upstream error"
// @Router /transcribe [post]
func (h *TranscriptionHandler) Transcribe(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	header, err := c.FormFile(AudioField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.HandleError(c, apierrors.NewPayloadTooLargeError(msgAudioTooLarge))
			return
		}
		middleware.HandleError(c, apierrors.NewBadRequestError(msgNoAudio))
		return
	}
	if header.Size > h.maxUploadBytes {
		middleware.HandleError(c, apierrors.NewPayloadTooLargeError(msgAudioTooLarge))
		return
	}

	file, err := header.Open()
	if err != nil {
		middleware.HandleError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	text, err := h.service.Transcribe(c.Request.Context(), &services.Upload{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Body:     file,
	})
	if err != nil {
		if errors.Is(err, services.ErrMissingFile) {
			err = apierrors.NewBadRequestError(msgNoAudio)
		}
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TranscriptionResponse{Text: text})
}

// TestKey handles GET /api/test-key. It reports whether the configured
// credential is accepted by the transcription capability.
//
// @Summary Check the transcription credential
// @Tags transcription
// @Produce json
// @Success 200 {object} dto.TestKeyResponse "Credential accepted"
// @Failure 400 {object} dto.TestKeyResponse "Credential missing or rejected"
// @Router /test-key [get]
func (h *TranscriptionHandler) TestKey(c *gin.Context) {
	sample, err := h.service.TestKey(c.Request.Context())
	if err == nil {
		c.JSON(http.StatusOK, dto.TestKeyResponse{OK: true, Sample: sample})
		return
	}

	status := http.StatusBadRequest
	message := err.Error()
	if svcErr, ok := provider.AsServiceError(err); ok {
		if svcErr.Status >= http.StatusBadRequest {
			status = svcErr.Status
		}
		message = svcErr.Message
	}
	_ = c.Error(err)
	c.JSON(status, dto.TestKeyResponse{OK: false, Message: message})
}
