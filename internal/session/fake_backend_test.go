package session

import (
	"context"
	"sync"

	"quiz-player/internal/quiz"
)

type fakeBackend struct {
	mu sync.Mutex

	playQuiz quiz.Quiz
	playErr  error
	fullQuiz quiz.Quiz
	fullErr  error

	attempts    []quiz.AttemptRecord
	attemptsErr error

	submitResult quiz.SubmissionResult
	submitErr    error
	// submitGate, when set, blocks SubmitAttempt until closed.
	submitGate chan struct{}

	playCalls     int
	fullCalls     int
	attemptsCalls int
	submitCalls   int

	lastAnswers  []quiz.Answer
	lastDuration int
}

func (f *fakeBackend) FetchPlayQuiz(_ context.Context, _ string) (quiz.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playCalls++
	if f.playErr != nil {
		return quiz.Quiz{}, f.playErr
	}
	return f.playQuiz, nil
}

func (f *fakeBackend) FetchFullQuiz(_ context.Context, _ string) (quiz.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullCalls++
	if f.fullErr != nil {
		return quiz.Quiz{}, f.fullErr
	}
	return f.fullQuiz, nil
}

func (f *fakeBackend) ListAttempts(_ context.Context) ([]quiz.AttemptRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attemptsCalls++
	if f.attemptsErr != nil {
		return nil, f.attemptsErr
	}
	return f.attempts, nil
}

func (f *fakeBackend) SubmitAttempt(_ context.Context, _ string, answers []quiz.Answer, durationSeconds int) (quiz.SubmissionResult, error) {
	f.mu.Lock()
	f.submitCalls++
	f.lastAnswers = answers
	f.lastDuration = durationSeconds
	gate := f.submitGate
	result, err := f.submitResult, f.submitErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return result, err
}

func (f *fakeBackend) calls() (play, full, attempts, submit int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playCalls, f.fullCalls, f.attemptsCalls, f.submitCalls
}

// sampleQuiz has answer keys [0, [1,2], 1].
func sampleQuiz() quiz.Quiz {
	return quiz.Quiz{
		ID:    "quiz-1",
		Title: "Sample",
		Questions: []quiz.Question{
			{Text: "Q1", Options: []string{"a", "b", "c"}, Type: quiz.SingleChoice, Correct: quiz.SingleAnswer(0)},
			{Text: "Q2", Options: []string{"a", "b", "c"}, Type: quiz.MultipleChoice, Correct: quiz.MultiAnswer{1, 2}},
			{Text: "Q3", Options: []string{"a", "b"}, Type: quiz.MultipleStatements, Correct: quiz.SingleAnswer(1)},
		},
	}
}

func questionsOnly(count int) []quiz.Question {
	questions := make([]quiz.Question, count)
	for idx := range questions {
		questions[idx] = quiz.Question{Text: "Q", Options: []string{"a", "b", "c"}, Type: quiz.SingleChoice}
	}
	return questions
}
