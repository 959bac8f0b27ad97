package devserver

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-player/internal/quiz"
)

var (
	ErrAttemptLimit = errors.New("maximum attempts reached")
	ErrInvalidQuiz  = errors.New("invalid quiz")
)

// Store is the in-memory catalog and attempt ledger behind the dev server.
type Store struct {
	mu       sync.RWMutex
	quizzes  map[string]quiz.Quiz
	attempts map[string][]quiz.AttemptRecord
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		quizzes:  make(map[string]quiz.Quiz),
		attempts: make(map[string][]quiz.AttemptRecord),
		now:      time.Now,
	}
}

// PutQuiz adds or replaces a quiz. Every question needs an answer key since
// the server scores submissions.
func (s *Store) PutQuiz(q quiz.Quiz) error {
	q.ID = strings.TrimSpace(q.ID)
	if q.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuiz)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: quiz %s has no questions", ErrInvalidQuiz, q.ID)
	}
	if !q.HasAnswerKey() {
		return fmt.Errorf("%w: quiz %s is missing answer keys", ErrInvalidQuiz, q.ID)
	}
	q.Preview = false

	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[q.ID] = q
	return nil
}

func (s *Store) Quiz(id string) (quiz.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quizzes[id]
	if !ok {
		return quiz.Quiz{}, quiz.ErrNotFound
	}
	q.Questions = slices.Clone(q.Questions)
	return q, nil
}

func (s *Store) QuizIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.quizzes))
	for id := range s.quizzes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Submit scores answers and records the attempt. The attempt-limit check and
// the insert happen under one lock.
func (s *Store) Submit(userID, quizID string, answers []quiz.Answer, duration int) (quiz.AttemptRecord, quiz.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quizzes[quizID]
	if !ok {
		return quiz.AttemptRecord{}, quiz.Quiz{}, quiz.ErrNotFound
	}

	history := s.attempts[userID]
	if q.LimitedAttempts() && quiz.CountActiveAttempts(history, quizID) >= q.MaxAttempts {
		return quiz.AttemptRecord{}, quiz.Quiz{}, ErrAttemptLimit
	}

	score := 0
	for idx, question := range q.Questions {
		if idx < len(answers) && quiz.IsCorrect(question, answers[idx]) {
			score++
		}
	}

	number := 1
	for _, record := range history {
		if record.QuizID == quizID {
			number++
		}
	}

	record := quiz.AttemptRecord{
		ID:             uuid.NewString(),
		QuizID:         quizID,
		QuizTitle:      q.Title,
		AttemptNumber:  number,
		Score:          score,
		TotalQuestions: len(q.Questions),
		Duration:       max(duration, 0),
		CreatedAt:      s.now().UTC(),
	}
	s.attempts[userID] = append(history, record)

	q.Questions = slices.Clone(q.Questions)
	return record, q, nil
}

// Attempts lists every attempt of the user, withdrawn ones included.
func (s *Store) Attempts(userID string) []quiz.AttemptRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.attempts[userID])
}

// DeleteAttempt withdraws an attempt. The record stays, flagged as deleted,
// and no longer counts toward the attempt limit.
func (s *Store) DeleteAttempt(userID, attemptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.attempts[userID]
	for idx := range history {
		if history[idx].ID == attemptID && !history[idx].Deleted {
			history[idx].Deleted = true
			return nil
		}
	}
	return quiz.ErrNotFound
}
