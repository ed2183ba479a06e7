package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"voice-interview/internal/api/handlers"
	"voice-interview/internal/api/middleware"
	"voice-interview/internal/api/services"
	"voice-interview/internal/app/api/provider"
	"voice-interview/internal/app/model"
	"voice-interview/internal/app/testutil"
)

const testMaxUpload = 1024

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	return router
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestQuestionHandler_List(t *testing.T) {
	svc := testutil.NewMockQuestionService(t)
	svc.On("Resolve", mock.Anything).Return([]model.Prompt{
		{ID: 1, Text: "Introduce yourself", AudioURL: "/questions/01.mp3"},
		{ID: 2, Text: "Your proudest achievement"},
	})

	router := setupTestRouter()
	router.GET("/api/questions", handlers.NewQuestionHandler(svc).List)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/questions", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[
		{"id":1,"text":"Introduce yourself","audioUrl":"/questions/01.mp3"},
		{"id":2,"text":"Your proudest achievement"}
	]}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	router := setupTestRouter()
	router.GET("/api/health", handlers.Health)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestTranscriptionHandler_Transcribe(t *testing.T) {
	tests := []struct {
		name           string
		field          string
		data           []byte
		setupMocks     func(*testutil.MockTranscriptionService)
		expectedStatus int
		validateBody   func(*testing.T, map[string]interface{})
	}{
		{
			name:  "successful transcription",
			field: handlers.AudioField,
			data:  []byte("webm-bytes"),
			setupMocks: func(svc *testutil.MockTranscriptionService) {
				svc.On("Transcribe", mock.Anything, mock.MatchedBy(func(u *services.Upload) bool {
					return u.Filename == "answer1.webm" && u.MimeType == "audio/webm;codecs=opus"
				})).Return("I build backend services.", nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "I build backend services.", body["text"])
			},
		},
		{
			name:  "empty transcription is a success",
			field: handlers.AudioField,
			data:  []byte("silence"),
			setupMocks: func(svc *testutil.MockTranscriptionService) {
				svc.On("Transcribe", mock.Anything, mock.Anything).Return("", nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "", body["text"])
			},
		},
		{
			name:           "missing audio field",
			field:          "file",
			data:           []byte("webm-bytes"),
			setupMocks:     func(*testutil.MockTranscriptionService) {},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "No audio file uploaded", body["error"])
			},
		},
		{
			name:           "upload over the limit",
			field:          handlers.AudioField,
			data:           bytes.Repeat([]byte("a"), testMaxUpload+1),
			setupMocks:     func(*testutil.MockTranscriptionService) {},
			expectedStatus: http.StatusRequestEntityTooLarge,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Audio file too large", body["error"])
			},
		},
		{
			name:  "capability rate limited",
			field: handlers.AudioField,
			data:  []byte("webm-bytes"),
			setupMocks: func(svc *testutil.MockTranscriptionService) {
				svc.On("Transcribe", mock.Anything, mock.Anything).
					Return("", provider.NewServiceError("openai", http.StatusTooManyRequests, "", "Rate limit reached", nil))
			},
			expectedStatus: http.StatusTooManyRequests,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Transcription error", body["error"])
				assert.Equal(t, float64(429), body["status"])
				assert.Equal(t, provider.CodeRateLimitExceeded, body["code"])
				assert.Equal(t, "Rate limit reached", body["message"])
			},
		},
		{
			name:  "capability misconfigured",
			field: handlers.AudioField,
			data:  []byte("webm-bytes"),
			setupMocks: func(svc *testutil.MockTranscriptionService) {
				svc.On("Transcribe", mock.Anything, mock.Anything).
					Return("", provider.NewMisconfiguredError("openai", errors.New("OPENAI_API_KEY is not set")))
			},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Transcription error", body["error"])
				assert.Equal(t, provider.CodeMissingAPIKey, body["code"])
				assert.Contains(t, body["message"], "OPENAI_API_KEY")
			},
		},
		{
			name:  "unexpected failure",
			field: handlers.AudioField,
			data:  []byte("webm-bytes"),
			setupMocks: func(svc *testutil.MockTranscriptionService) {
				svc.On("Transcribe", mock.Anything, mock.Anything).
					Return("", errors.New("store upload: no space left on device"))
			},
			expectedStatus: http.StatusInternalServerError,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Server error", body["error"])
				assert.Contains(t, body["details"], "no space left")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewMockTranscriptionService(t)
			tt.setupMocks(svc)

			router := setupTestRouter()
			router.POST("/api/transcribe", handlers.NewTranscriptionHandler(svc, testMaxUpload).Transcribe)

			body, contentType := multipartBody(t, tt.field, "answer1.webm", "audio/webm;codecs=opus", tt.data)
			req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			tt.validateBody(t, decode(t, rec))
			svc.AssertExpectations(t)
		})
	}
}

func TestTranscriptionHandler_NotMultipart(t *testing.T) {
	svc := testutil.NewMockTranscriptionService(t)
	router := setupTestRouter()
	router.POST("/api/transcribe", handlers.NewTranscriptionHandler(svc, testMaxUpload).Transcribe)

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", strings.NewReader(`{"audio":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything)
}

// Runs the real proxy behind the handler and checks that no upload
// survives the request, whatever the outcome.
func TestTranscribe_TempFilesRemoved(t *testing.T) {
	for name, p := range map[string]*testutil.MockProvider{
		"success": testutil.NewMockProvider().WithResponse(" ok "),
		"failure": testutil.NewMockProvider().WithError(provider.NewServiceError("openai", 500, "", "upstream down", nil)),
	} {
		t.Run(name, func(t *testing.T) {
			tempDir := t.TempDir()
			proxy := services.NewTranscriptionProxy(p.Factory(), services.ProxyConfig{TempDir: tempDir, Language: "en"}, nil, nil)

			router := setupTestRouter()
			router.POST("/api/transcribe", handlers.NewTranscriptionHandler(proxy, testMaxUpload).Transcribe)

			body, contentType := multipartBody(t, handlers.AudioField, "answer2.ogg", "audio/ogg", []byte("ogg-bytes"))
			req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Len(t, p.Calls(), 1)
			assert.True(t, p.Calls()[0].FileExists)
			assert.True(t, strings.HasSuffix(p.Calls()[0].Request.InputFilePath, ".ogg"))
			assert.Empty(t, testutil.DirEntries(t, tempDir))
		})
	}
}

func TestTranscriptionHandler_TestKey(t *testing.T) {
	tests := []struct {
		name           string
		sample         []string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "key accepted",
			sample:         []string{"whisper-1"},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"ok":true,"sample":["whisper-1"]}`,
		},
		{
			name:           "key rejected upstream",
			err:            provider.NewServiceError("openai", http.StatusUnauthorized, "invalid_api_key", "Incorrect API key provided", nil),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"ok":false,"message":"Incorrect API key provided"}`,
		},
		{
			name:           "key missing",
			err:            provider.NewMisconfiguredError("openai", errors.New("OPENAI_API_KEY is not set")),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"ok":false,"message":"OPENAI_API_KEY is not set"}`,
		},
		{
			name:           "no status defaults to 400",
			err:            services.ErrTestNotSupported,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"ok":false,"message":"provider does not support credential checks"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewMockTranscriptionService(t)
			svc.On("TestKey", mock.Anything).Return(tt.sample, tt.err)

			router := setupTestRouter()
			router.GET("/api/test-key", handlers.NewTranscriptionHandler(svc, testMaxUpload).TestKey)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/api/test-key", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
		})
	}
}
