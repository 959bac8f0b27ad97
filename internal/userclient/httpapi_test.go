package userclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"quiz-player/internal/auth"
	"quiz-player/internal/devserver"
	"quiz-player/internal/quiz"
)

const testSecret = "test-secret"

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func ownedQuiz() quiz.Quiz {
	return quiz.Quiz{
		ID:          "quiz-1",
		Title:       "Owned",
		Difficulty:  "easy",
		OwnerID:     "owner",
		TimeLimit:   90,
		MaxAttempts: 2,
		Questions: []quiz.Question{
			{Text: "Q1", Options: []string{"a", "b", "c"}, Type: quiz.SingleChoice, Correct: quiz.SingleAnswer(0), Explanation: "a comes first"},
			{Text: "Q2", Options: []string{"a", "b", "c"}, Type: quiz.MultipleChoice, Correct: quiz.MultiAnswer{1, 2}},
			{Text: "Q3", Options: []string{"True", "False"}, Type: quiz.MultipleStatements, Correct: quiz.SingleAnswer(1)},
		},
	}
}

// newDevServer runs the development backend with the given quizzes and
// returns its API base URL.
func newDevServer(t *testing.T, quizzes ...quiz.Quiz) (string, *devserver.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := devserver.NewStore()
	for _, q := range quizzes {
		if err := store.PutQuiz(q); err != nil {
			t.Fatalf("PutQuiz(%s) failed: %v", q.ID, err)
		}
	}

	server := httptest.NewServer(devserver.NewRouter(store, testSecret, nil))
	t.Cleanup(server.Close)
	return server.URL + "/api", store
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.IssueToken(userID, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	return token
}

func TestDoJSONReturnsServiceUnavailable(t *testing.T) {
	client := NewHTTPClient("http://example.test", &http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial error")
		}),
	}, nil)

	err := client.doJSON(context.Background(), http.MethodGet, "/health", nil, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable wrapper, got %v", err)
	}
}

func TestDoJSONReturnsAPIErrorMessageFromBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "bad request payload"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client(), nil)
	err := client.doJSON(context.Background(), http.MethodGet, "/anything", nil, nil)
	if err == nil {
		t.Fatalf("expected API error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", apiErr.StatusCode, http.StatusBadRequest)
	}
	if apiErr.Message != "bad request payload" {
		t.Fatalf("message = %q, want %q", apiErr.Message, "bad request payload")
	}
	if errors.Is(err, quiz.ErrNotFound) || errors.Is(err, quiz.ErrUnauthorized) {
		t.Fatalf("400 must not map to a domain sentinel")
	}
}

func TestAPIErrorUnwrapsToDomainSentinels(t *testing.T) {
	if !errors.Is(&APIError{StatusCode: http.StatusUnauthorized}, quiz.ErrUnauthorized) {
		t.Fatalf("401 should unwrap to quiz.ErrUnauthorized")
	}
	if !errors.Is(&APIError{StatusCode: http.StatusNotFound}, quiz.ErrNotFound) {
		t.Fatalf("404 should unwrap to quiz.ErrNotFound")
	}
}

func TestClientUnwrapsEnvelopesAndAttachesToken(t *testing.T) {
	var seenAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/quiz/abc/public":
			_, _ = w.Write([]byte(`{"quiz":{"id":"abc","title":"Wrapped","questions":[{"text":"Q","options":["x","y"]}]}}`))
		case "/attempts/user":
			_, _ = w.Write([]byte(`{"data":[{"id":"a1","quiz":{"_id":"abc","title":"Wrapped"},"score":1,"isDeleted":false}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/", server.Client(), auth.NewStore("opaque"))

	loaded, err := client.FetchPlayQuiz(context.Background(), "abc")
	if err != nil {
		t.Fatalf("FetchPlayQuiz failed: %v", err)
	}
	if loaded.ID != "abc" || loaded.Title != "Wrapped" || len(loaded.Questions) != 1 {
		t.Fatalf("unexpected quiz: %+v", loaded)
	}
	if seenAuth != "Bearer opaque" {
		t.Fatalf("Authorization = %q, want bearer token", seenAuth)
	}

	records, err := client.ListAttempts(context.Background())
	if err != nil {
		t.Fatalf("ListAttempts failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "a1" || records[0].QuizID != "abc" {
		t.Fatalf("unexpected attempts: %+v", records)
	}

	if _, err := client.FetchFullQuiz(context.Background(), "abc"); !errors.Is(err, quiz.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown path, got %v", err)
	}
}

func TestClientAgainstDevServer(t *testing.T) {
	baseURL, _ := newDevServer(t, ownedQuiz())
	ctx := context.Background()

	anonymous := NewHTTPClient(baseURL, nil, auth.NewStore(""))
	if _, err := anonymous.ListAttempts(ctx); !errors.Is(err, quiz.ErrUnauthorized) {
		t.Fatalf("anonymous ListAttempts error = %v, want ErrUnauthorized", err)
	}

	player := NewHTTPClient(baseURL, nil, auth.NewStore(tokenFor(t, "player")))
	played, err := player.FetchPlayQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("FetchPlayQuiz failed: %v", err)
	}
	if played.HasAnswerKey() {
		t.Fatalf("play view must withhold answer keys")
	}
	if played.MaxAttempts != 2 || played.TimeLimit != 90 {
		t.Fatalf("unexpected quiz settings: %+v", played)
	}

	if _, err := player.ListAttempts(ctx); !errors.Is(err, quiz.ErrNotFound) {
		t.Fatalf("empty history error = %v, want ErrNotFound", err)
	}

	answers := []quiz.Answer{quiz.SingleAnswer(0), quiz.MultiAnswer{1, 2}, nil}
	result, err := player.SubmitAttempt(ctx, "quiz-1", answers, 30)
	if err != nil {
		t.Fatalf("SubmitAttempt failed: %v", err)
	}
	if result.Score != 2 || result.Total != 3 || result.AttemptID == "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Quiz == nil || !result.Quiz.HasAnswerKey() {
		t.Fatalf("submit response should carry the full quiz")
	}

	records, err := player.ListAttempts(ctx)
	if err != nil {
		t.Fatalf("ListAttempts failed: %v", err)
	}
	if len(records) != 1 || records[0].Duration != 30 {
		t.Fatalf("unexpected attempts: %+v", records)
	}

	if err := player.DeleteAttempt(ctx, records[0].ID); err != nil {
		t.Fatalf("DeleteAttempt failed: %v", err)
	}
	records, err = player.ListAttempts(ctx)
	if err != nil {
		t.Fatalf("ListAttempts failed: %v", err)
	}
	if quiz.CountActiveAttempts(records, "quiz-1") != 0 {
		t.Fatalf("deleted attempt should not count: %+v", records)
	}

	if _, err := player.FetchFullQuiz(ctx, "quiz-1"); err == nil {
		t.Fatalf("non-owner must not read the full quiz")
	}

	owner := NewHTTPClient(baseURL, nil, auth.NewStore(tokenFor(t, "owner")))
	full, err := owner.FetchFullQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("owner FetchFullQuiz failed: %v", err)
	}
	if !full.HasAnswerKey() || full.Questions[0].Explanation != "a comes first" {
		t.Fatalf("owner should see keys and explanations: %+v", full.Questions[0])
	}
}
