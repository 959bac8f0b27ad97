package quiz

import "slices"

// ResolveType picks the answer shape for a question. An explicit question tag
// wins, then a concrete quiz-level tag, then the shape of the answer key.
func ResolveType(question Question, quizDefault string) QuestionType {
	if t, ok := ParseQuestionType(question.Tag); ok {
		return t
	}
	if t, ok := ParseQuestionType(quizDefault); ok {
		return t
	}
	if _, ok := question.Correct.(MultiAnswer); ok {
		return MultipleChoice
	}
	return SingleChoice
}

func IsMultiple(question Question) bool {
	switch question.Type {
	case MultipleChoice:
		return true
	case SingleChoice, MultipleStatements:
		return false
	default:
		return false
	}
}

// NormalizeAnswerSet coerces an answer into an ascending, deduplicated list of
// non-negative option indexes. Unanswered input yields nil.
func NormalizeAnswerSet(answer Answer) []int {
	var indexes []int
	switch value := answer.(type) {
	case SingleAnswer:
		indexes = []int{int(value)}
	case MultiAnswer:
		indexes = slices.Clone([]int(value))
	default:
		return nil
	}

	indexes = slices.DeleteFunc(indexes, func(index int) bool { return index < 0 })
	if len(indexes) == 0 {
		return nil
	}
	slices.Sort(indexes)
	return slices.Compact(indexes)
}

// IsCorrect never fails: unanswered questions and withheld keys are incorrect.
func IsCorrect(question Question, answer Answer) bool {
	if answer == nil || question.Correct == nil {
		return false
	}

	switch question.Type {
	case MultipleChoice:
		got := NormalizeAnswerSet(answer)
		want := NormalizeAnswerSet(question.Correct)
		return len(got) > 0 && slices.Equal(got, want)
	case SingleChoice, MultipleStatements:
		got, ok := singleIndex(answer)
		if !ok {
			return false
		}
		want, ok := singleIndex(question.Correct)
		return ok && got == want
	default:
		return false
	}
}

func IsAnswered(question Question, answer Answer) bool {
	if answer == nil {
		return false
	}

	switch question.Type {
	case MultipleChoice:
		return len(NormalizeAnswerSet(answer)) > 0
	case SingleChoice, MultipleStatements:
		_, ok := singleIndex(answer)
		return ok
	default:
		return false
	}
}

// singleIndex accepts a one-element list too; some backends wrap single keys.
func singleIndex(answer Answer) (int, bool) {
	switch value := answer.(type) {
	case SingleAnswer:
		return int(value), value >= 0
	case MultiAnswer:
		if len(value) == 1 && value[0] >= 0 {
			return value[0], true
		}
	}
	return 0, false
}
