package devserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"math/rand"
	"os"
	"strings"

	"quiz-player/internal/opentdb"
	"quiz-player/internal/quiz"
)

// LoadCatalogFile reads quizzes from a JSON file holding either an array of
// quizzes or an object with a "quizzes" array.
func LoadCatalogFile(path string) ([]quiz.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Quizzes []quiz.Quiz `json:"quizzes"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		return wrapped.Quizzes, nil
	}

	var quizzes []quiz.Quiz
	if err := json.Unmarshal(data, &quizzes); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return quizzes, nil
}

// TriviaQuiz turns Open Trivia DB questions into an ownerless quiz. True/false
// questions become statements; the rest are single choice with shuffled
// options.
func TriviaQuiz(id string, raw []opentdb.RawQuestion, timeLimit, maxAttempts int) quiz.Quiz {
	questions := make([]quiz.Question, 0, len(raw))
	difficulty := ""
	for idx, item := range raw {
		questions = append(questions, buildTriviaQuestion(fmt.Sprintf("%s-q%d", id, idx+1), item))
		switch {
		case difficulty == "":
			difficulty = item.Difficulty
		case difficulty != item.Difficulty:
			difficulty = quiz.TagMixed
		}
	}

	return quiz.Quiz{
		ID:          id,
		Title:       fmt.Sprintf("Open Trivia (%d questions)", len(questions)),
		Difficulty:  difficulty,
		QuizType:    quiz.TagMixed,
		Questions:   questions,
		TimeLimit:   timeLimit,
		MaxAttempts: maxAttempts,
	}
}

func buildTriviaQuestion(id string, raw opentdb.RawQuestion) quiz.Question {
	text := html.UnescapeString(raw.Question)
	correctText := html.UnescapeString(raw.CorrectAnswer)

	if raw.Type == opentdb.TypeBoolean {
		correct := 1
		if strings.EqualFold(correctText, "true") {
			correct = 0
		}
		return quiz.Question{
			ID:      id,
			Text:    text,
			Options: []string{"True", "False"},
			Type:    quiz.MultipleStatements,
			Correct: quiz.SingleAnswer(correct),
		}
	}

	options := make([]string, 0, len(raw.IncorrectAnswers)+1)
	for _, incorrect := range raw.IncorrectAnswers {
		options = append(options, html.UnescapeString(incorrect))
	}
	options = append(options, correctText)

	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	correct := 0
	for idx, option := range options {
		if option == correctText {
			correct = idx
			break
		}
	}

	return quiz.Question{
		ID:      id,
		Text:    text,
		Options: options,
		Type:    quiz.SingleChoice,
		Correct: quiz.SingleAnswer(correct),
	}
}
