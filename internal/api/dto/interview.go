package dto

import "voice-interview/internal/app/model"

// QuestionsResponse is the body of GET /api/questions
type QuestionsResponse = model.QuestionList

// TranscriptionResponse is the body of a successful POST /api/transcribe
type TranscriptionResponse struct {
	Text string `json:"text"`
}

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	OK bool `json:"ok"`
}

// TestKeyResponse is the body of GET /api/test-key. Sample holds at most
// one model id visible to the configured credential.
type TestKeyResponse struct {
	OK      bool     `json:"ok"`
	Sample  []string `json:"sample,omitempty"`
	Message string   `json:"message,omitempty"`
}
