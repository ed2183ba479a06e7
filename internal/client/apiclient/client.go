// Package apiclient talks to the interview server's HTTP API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"voice-interview/internal/api/dto"
	apierrors "voice-interview/internal/api/errors"
	"voice-interview/internal/app/model"
	"voice-interview/internal/client/capture"
)

// DefaultTimeout bounds a single API call, transcription included
const DefaultTimeout = 2 * time.Minute

// maxErrorBody caps how much of an error response is read
const maxErrorBody = 64 * 1024

// ServiceError is a non-2xx answer from the server. Body holds the decoded
// error document when the server sent one.
type ServiceError struct {
	StatusCode int
	Body       apierrors.APIError
	Raw        string
}

func (e *ServiceError) Error() string {
	switch {
	case e.Body.Message != "":
		return e.Body.Message
	case e.Body.Summary != "":
		if e.Body.Details != "" {
			return e.Body.Summary + ": " + e.Body.Details
		}
		return e.Body.Summary
	case e.Raw != "":
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Raw)
	default:
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
}

// Client is an interview API client
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL. A nil httpClient gets
// DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Questions fetches the prompt list
func (c *Client) Questions(ctx context.Context) ([]model.Prompt, error) {
	var list model.QuestionList
	if err := c.getJSON(ctx, "/api/questions", &list); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return list.Items, nil
}

// Transcribe uploads one recording under filename and returns its text
func (c *Client) Transcribe(ctx context.Context, audio capture.Blob, filename string) (string, error) {
	body, contentType, err := audioForm(audio, filename)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/transcribe", body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	var resp dto.TranscriptionResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// TestKey asks the server to verify its transcription credential. A
// rejected credential is reported in the result, not as an error.
func (c *Client) TestKey(ctx context.Context) (*dto.TestKeyResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/test-key", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("test key: %w", err)
	}
	defer resp.Body.Close()

	var result dto.TestKeyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode test-key response (status %d): %w", resp.StatusCode, err)
	}
	return &result, nil
}

// Health checks that the server is up
func (c *Client) Health(ctx context.Context) error {
	var health dto.HealthResponse
	if err := c.getJSON(ctx, "/api/health", &health); err != nil {
		return err
	}
	if !health.OK {
		return fmt.Errorf("server reported unhealthy")
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	svcErr := &ServiceError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(data, &svcErr.Body); err != nil || svcErr.Body.Summary == "" {
		svcErr.Raw = strings.TrimSpace(string(data))
	}
	return svcErr
}

func audioForm(audio capture.Blob, filename string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	mimeType := audio.MimeType
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, filename))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audio.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}
