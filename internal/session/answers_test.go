package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quiz-player/internal/quiz"
)

func mixedQuestions() []quiz.Question {
	return []quiz.Question{
		{Text: "single", Options: []string{"a", "b", "c"}, Type: quiz.SingleChoice, Correct: quiz.SingleAnswer(0)},
		{Text: "multi", Options: []string{"a", "b", "c", "d"}, Type: quiz.MultipleChoice, Correct: quiz.MultiAnswer{1, 2}},
		{Text: "statements", Options: []string{"true", "false"}, Type: quiz.MultipleStatements, Correct: quiz.SingleAnswer(1)},
	}
}

func TestAnswerStoreSingleChoiceOverwritesAndIsIdempotent(t *testing.T) {
	store := NewAnswerStore(mixedQuestions())

	require.True(t, store.Select(0, 1))
	require.True(t, store.Select(0, 1))
	require.Equal(t, quiz.SingleAnswer(1), store.Get(0))

	require.True(t, store.Select(0, 2))
	require.Equal(t, quiz.SingleAnswer(2), store.Get(0))
	require.True(t, store.IsAnswered(0))
}

func TestAnswerStoreMultipleChoiceTogglesSorted(t *testing.T) {
	store := NewAnswerStore(mixedQuestions())

	store.Select(1, 3)
	store.Select(1, 0)
	store.Select(1, 2)
	require.Equal(t, quiz.MultiAnswer{0, 2, 3}, store.Get(1))

	store.Select(1, 2)
	store.Select(1, 2)
	require.Equal(t, quiz.MultiAnswer{0, 2, 3}, store.Get(1), "double toggle restores the set")

	store.Select(1, 0)
	store.Select(1, 3)
	store.Select(1, 2)
	require.Nil(t, store.Get(1))
	require.False(t, store.IsAnswered(1), "empty selection counts as unanswered")
}

func TestAnswerStoreRejectsOutOfRangeAndFrozen(t *testing.T) {
	store := NewAnswerStore(mixedQuestions())

	require.False(t, store.Select(5, 0))
	require.False(t, store.Select(0, 9))
	require.False(t, store.Select(0, -1))

	store.Select(2, 1)
	store.Freeze()
	require.False(t, store.Select(2, 0))
	require.Equal(t, quiz.SingleAnswer(1), store.Get(2))
}

func TestAnswerStoreSnapshotAndUnanswered(t *testing.T) {
	store := NewAnswerStore(mixedQuestions())
	require.Equal(t, 3, store.Unanswered())

	store.Select(1, 2)
	store.Select(1, 1)
	require.Equal(t, 2, store.Unanswered())

	snapshot := store.Snapshot()
	require.Equal(t, []quiz.Answer{nil, quiz.MultiAnswer{1, 2}, nil}, snapshot)

	snapshot[1].(quiz.MultiAnswer)[0] = 99
	require.Equal(t, quiz.MultiAnswer{1, 2}, store.Get(1), "snapshot must not alias store state")
}
