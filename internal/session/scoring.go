package session

import (
	"context"
	"fmt"

	"quiz-player/internal/quiz"
)

type Submitter interface {
	SubmitAttempt(ctx context.Context, quizID string, answers []quiz.Answer, durationSeconds int) (quiz.SubmissionResult, error)
	FetchFullQuiz(ctx context.Context, quizID string) (quiz.Quiz, error)
}

// Outcome is what a finished session shows. Review is nil when no
// question-level data could be obtained; ReviewErr then says why.
type Outcome struct {
	Score     int
	Total     int
	Duration  int
	AttemptID string
	Review    *quiz.Quiz
	ReviewErr error
}

// ScoreLocally counts correct answers against the loaded answer key. It is
// only meaningful for previews, where the key is present.
func ScoreLocally(q quiz.Quiz, answers []quiz.Answer) int {
	score := 0
	for idx, question := range q.Questions {
		if idx < len(answers) && quiz.IsCorrect(question, answers[idx]) {
			score++
		}
	}
	return score
}

type Reconciler struct {
	submitter Submitter
}

func NewReconciler(submitter Submitter) *Reconciler {
	return &Reconciler{submitter: submitter}
}

// Reconcile scores a preview locally, or submits a real attempt and takes the
// server's score. A real submission whose response lacks review data is
// followed by an authorized fetch; if that fails the score still stands.
func (r *Reconciler) Reconcile(ctx context.Context, q quiz.Quiz, answers []quiz.Answer, durationSeconds int) (Outcome, error) {
	if q.Preview {
		review := q
		return Outcome{
			Score:    ScoreLocally(q, answers),
			Total:    len(q.Questions),
			Duration: durationSeconds,
			Review:   &review,
		}, nil
	}

	result, err := r.submitter.SubmitAttempt(ctx, q.ID, answers, durationSeconds)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrSubmissionFailure, err)
	}

	outcome := Outcome{
		Score:     result.Score,
		Total:     result.Total,
		Duration:  durationSeconds,
		AttemptID: result.AttemptID,
	}
	if outcome.Total <= 0 {
		outcome.Total = len(q.Questions)
	}

	if result.Quiz != nil && result.Quiz.HasAnswerKey() {
		outcome.Review = result.Quiz
		return outcome, nil
	}

	full, err := r.submitter.FetchFullQuiz(ctx, q.ID)
	if err != nil {
		outcome.ReviewErr = fmt.Errorf("%w: %w", ErrEnrichmentFailure, err)
		return outcome, nil
	}
	outcome.Review = &full
	return outcome, nil
}
