package session

import (
	"slices"

	"quiz-player/internal/quiz"
)

// AnswerStore holds in-progress answers keyed by question index. A
// multiple-choice question may be toggled back to an empty selection, which
// counts as unanswered and is submitted as null.
type AnswerStore struct {
	questions []quiz.Question
	answers   map[int]quiz.Answer
	frozen    bool
}

func NewAnswerStore(questions []quiz.Question) *AnswerStore {
	return &AnswerStore{
		questions: questions,
		answers:   make(map[int]quiz.Answer, len(questions)),
	}
}

// Select records optionIndex for the question: single-answer questions are
// overwritten, multiple-choice questions toggle membership. It reports
// whether anything was accepted.
func (s *AnswerStore) Select(questionIndex, optionIndex int) bool {
	if s.frozen || questionIndex < 0 || questionIndex >= len(s.questions) {
		return false
	}
	question := s.questions[questionIndex]
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		return false
	}

	if !quiz.IsMultiple(question) {
		s.answers[questionIndex] = quiz.SingleAnswer(optionIndex)
		return true
	}

	current := quiz.NormalizeAnswerSet(s.answers[questionIndex])
	if pos, found := slices.BinarySearch(current, optionIndex); found {
		current = slices.Delete(current, pos, pos+1)
	} else {
		current = slices.Insert(current, pos, optionIndex)
	}

	if len(current) == 0 {
		delete(s.answers, questionIndex)
		return true
	}
	s.answers[questionIndex] = quiz.MultiAnswer(current)
	return true
}

func (s *AnswerStore) Get(questionIndex int) quiz.Answer {
	return s.answers[questionIndex]
}

func (s *AnswerStore) IsAnswered(questionIndex int) bool {
	if questionIndex < 0 || questionIndex >= len(s.questions) {
		return false
	}
	return quiz.IsAnswered(s.questions[questionIndex], s.answers[questionIndex])
}

func (s *AnswerStore) Unanswered() int {
	count := 0
	for idx := range s.questions {
		if !s.IsAnswered(idx) {
			count++
		}
	}
	return count
}

// Freeze makes every later Select a no-op.
func (s *AnswerStore) Freeze() {
	s.frozen = true
}

func (s *AnswerStore) Frozen() bool {
	return s.frozen
}

// Snapshot returns one entry per question, nil where unanswered. The slices
// are copies.
func (s *AnswerStore) Snapshot() []quiz.Answer {
	out := make([]quiz.Answer, len(s.questions))
	for idx := range s.questions {
		out[idx] = cloneAnswer(s.answers[idx])
	}
	return out
}

func cloneAnswer(answer quiz.Answer) quiz.Answer {
	if multi, ok := answer.(quiz.MultiAnswer); ok {
		return quiz.MultiAnswer(slices.Clone([]int(multi)))
	}
	return answer
}
