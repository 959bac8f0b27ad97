package quiz

import (
	"encoding/json"
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

type Quiz struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Difficulty  string     `json:"difficulty,omitempty"`
	QuizType    string     `json:"questionType,omitempty"`
	Questions   []Question `json:"questions"`
	TimeLimit   int        `json:"timeLimit,omitempty"`
	MaxAttempts int        `json:"maxAttempts,omitempty"`
	OwnerID     string     `json:"owner,omitempty"`

	// Preview marks a no-stakes run entered from the draft editor. It is a
	// property of the session, never of the payload.
	Preview bool `json:"-"`
}

func (q *Quiz) UnmarshalJSON(data []byte) error {
	type plain Quiz
	wire := struct {
		plain
		AltID string `json:"id"`
	}{}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*q = Quiz(wire.plain)
	if q.ID == "" {
		q.ID = wire.AltID
	}
	q.Resolve()
	return nil
}

// Resolve assigns every question its answer shape.
func (q *Quiz) Resolve() {
	for idx := range q.Questions {
		q.Questions[idx].Type = ResolveType(q.Questions[idx], q.QuizType)
	}
}

// Countdown reports whether the quiz has a positive time limit.
func (q Quiz) Countdown() bool {
	return q.TimeLimit > 0
}

func (q Quiz) LimitedAttempts() bool {
	return q.MaxAttempts > 0
}

// HasAnswerKey reports whether every question carries its correct answer,
// which is only true on the owner/authorized path or after submission.
func (q Quiz) HasAnswerKey() bool {
	if len(q.Questions) == 0 {
		return false
	}
	for _, question := range q.Questions {
		if question.Withheld() {
			return false
		}
	}
	return true
}

// Public returns a copy with answer keys and explanations removed.
func (q Quiz) Public() Quiz {
	public := q
	public.Questions = make([]Question, len(q.Questions))
	for idx, question := range q.Questions {
		question.Correct = nil
		question.Explanation = ""
		public.Questions[idx] = question
	}
	return public
}

// SubmissionResult is the server's verdict for a real attempt, or the local
// one for a preview. Quiz is set when the response carried review data.
type SubmissionResult struct {
	AttemptID string `json:"attemptId,omitempty"`
	Score     int    `json:"score"`
	Total     int    `json:"totalQuestions"`
	Duration  int    `json:"duration"`
	Quiz      *Quiz  `json:"quiz,omitempty"`
}
