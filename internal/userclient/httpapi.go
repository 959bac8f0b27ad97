package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"quiz-player/internal/quiz"
)

const DefaultServerURL = "http://127.0.0.1:8080/api"

var ErrServiceUnavailable = errors.New("quiz service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Unwrap lets callers match 401 and 404 against the domain sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return quiz.ErrUnauthorized
	case http.StatusNotFound:
		return quiz.ErrNotFound
	default:
		return nil
	}
}

// TokenSource supplies the bearer credential for each request. An empty
// token sends the request anonymously.
type TokenSource interface {
	Token() string
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

type submitRequest struct {
	Answers  []any `json:"answers"`
	Duration int   `json:"duration"`
}

type submitResponse struct {
	Success bool `json:"success"`
	quiz.SubmissionResult
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client, tokens TokenSource) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		tokens:     tokens,
	}
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// FetchPlayQuiz loads the play view. Answer keys are withheld unless the
// caller owns the quiz.
func (c *HTTPClient) FetchPlayQuiz(ctx context.Context, quizID string) (quiz.Quiz, error) {
	return c.fetchQuiz(ctx, quizPath(quizID)+"/public", quizID)
}

// FetchFullQuiz loads the authorized view with answer keys and explanations.
func (c *HTTPClient) FetchFullQuiz(ctx context.Context, quizID string) (quiz.Quiz, error) {
	return c.fetchQuiz(ctx, quizPath(quizID), quizID)
}

func (c *HTTPClient) fetchQuiz(ctx context.Context, path, quizID string) (quiz.Quiz, error) {
	if strings.TrimSpace(quizID) == "" {
		return quiz.Quiz{}, errors.New("quiz_id is required")
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return quiz.Quiz{}, err
	}

	var loaded quiz.Quiz
	if err := json.Unmarshal(unwrapEnvelope(raw, "quiz"), &loaded); err != nil {
		return quiz.Quiz{}, fmt.Errorf("decode quiz %s: %w", quizID, err)
	}
	if loaded.ID == "" {
		loaded.ID = quizID
	}
	return loaded, nil
}

func (c *HTTPClient) SubmitAttempt(ctx context.Context, quizID string, answers []quiz.Answer, durationSeconds int) (quiz.SubmissionResult, error) {
	if strings.TrimSpace(quizID) == "" {
		return quiz.SubmissionResult{}, errors.New("quiz_id is required")
	}

	request := submitRequest{
		Answers:  quiz.EncodeAnswers(answers),
		Duration: durationSeconds,
	}
	var payload submitResponse
	if err := c.doJSON(ctx, http.MethodPost, quizPath(quizID)+"/submit", request, &payload); err != nil {
		return quiz.SubmissionResult{}, err
	}
	if payload.Duration == 0 {
		payload.Duration = durationSeconds
	}
	return payload.SubmissionResult, nil
}

// ListAttempts returns the caller's attempt history. A backend with no
// history for the caller answers 404, which surfaces as quiz.ErrNotFound.
func (c *HTTPClient) ListAttempts(ctx context.Context) ([]quiz.AttemptRecord, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/attempts/user", nil, &raw); err != nil {
		return nil, err
	}

	var records []quiz.AttemptRecord
	if err := json.Unmarshal(unwrapEnvelope(raw, "attempts"), &records); err != nil {
		return nil, fmt.Errorf("decode attempts: %w", err)
	}
	return records, nil
}

func (c *HTTPClient) DeleteAttempt(ctx context.Context, attemptID string) error {
	if strings.TrimSpace(attemptID) == "" {
		return errors.New("attempt_id is required")
	}
	return c.doJSON(ctx, http.MethodDelete, "/attempts/"+url.PathEscape(attemptID), nil, nil)
}

func quizPath(quizID string) string {
	return "/quiz/" + url.PathEscape(strings.TrimSpace(quizID))
}

// unwrapEnvelope returns the value under key, or under "data", when the
// payload is an object wrapping it; otherwise the payload itself.
func unwrapEnvelope(raw json.RawMessage, key string) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return trimmed
	}
	for _, candidate := range []string{key, "data"} {
		inner, ok := envelope[candidate]
		if !ok {
			continue
		}
		inner = bytes.TrimSpace(inner)
		if len(inner) > 0 && (inner[0] == '{' || inner[0] == '[') {
			return inner
		}
	}
	return trimmed
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil {
			apiErr.Message = strings.TrimSpace(payload.Error)
			if apiErr.Message == "" {
				apiErr.Message = strings.TrimSpace(payload.Message)
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
