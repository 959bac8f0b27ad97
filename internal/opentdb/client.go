package opentdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultBaseURL = "https://opentdb.com/api.php"

	defaultAmount = 10
	maxAmount     = 50
)

const (
	TypeMultiple = "multiple"
	TypeBoolean  = "boolean"
)

var (
	ErrNoResults   = errors.New("opentdb has too few questions for the query")
	ErrRateLimited = errors.New("opentdb rate limit reached")
)

// ResponseError carries a non-zero response_code that has no sentinel.
type ResponseError struct {
	Code int
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("opentdb response_code=%d", e.Code)
}

// RawQuestion is one trivia question as served, HTML entities included.
type RawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type triviaPayload struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

// Query narrows a fetch. Zero values mean "any".
type Query struct {
	Amount     int
	Category   int
	Difficulty string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient talks to baseURL, or the public endpoint when it is empty.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// FetchQuestions asks for amount questions of any category.
func (c *Client) FetchQuestions(ctx context.Context, amount int) ([]RawQuestion, error) {
	return c.Fetch(ctx, Query{Amount: amount})
}

// Fetch runs one query. The amount is clamped to what the API serves in a
// single call, and questions of a type the seed cannot build are dropped.
func (c *Client) Fetch(ctx context.Context, q Query) ([]RawQuestion, error) {
	amount := q.Amount
	if amount <= 0 {
		amount = defaultAmount
	}

	params := url.Values{}
	params.Set("amount", strconv.Itoa(min(amount, maxAmount)))
	if q.Category > 0 {
		params.Set("category", strconv.Itoa(q.Category))
	}
	if difficulty := strings.ToLower(strings.TrimSpace(q.Difficulty)); difficulty != "" {
		params.Set("difficulty", difficulty)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trivia: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opentdb returned status %d", resp.StatusCode)
	}

	var payload triviaPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode trivia: %w", err)
	}

	switch payload.ResponseCode {
	case 0:
	case 1:
		return nil, ErrNoResults
	case 5:
		return nil, ErrRateLimited
	default:
		return nil, &ResponseError{Code: payload.ResponseCode}
	}

	supported := payload.Results[:0]
	for _, question := range payload.Results {
		if question.Type == TypeMultiple || question.Type == TypeBoolean {
			supported = append(supported, question)
		}
	}
	return supported, nil
}
