package quiz

import (
	"encoding/json"
	"strconv"
	"strings"
)

type QuestionType int

const (
	SingleChoice QuestionType = iota
	MultipleStatements
	MultipleChoice
)

const (
	tagSingleChoice       = "singleChoice"
	tagMultipleStatements = "multipleStatements"
	tagMultipleChoice     = "multipleChoice"

	// TagMixed on a quiz means every question carries its own type.
	TagMixed = "mixed"
)

func (t QuestionType) String() string {
	switch t {
	case SingleChoice:
		return tagSingleChoice
	case MultipleStatements:
		return tagMultipleStatements
	case MultipleChoice:
		return tagMultipleChoice
	default:
		return "unknown"
	}
}

// ParseQuestionType maps a wire tag to a QuestionType. Matching ignores case
// and surrounding whitespace; unknown or empty tags report false.
func ParseQuestionType(tag string) (QuestionType, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case strings.ToLower(tagSingleChoice):
		return SingleChoice, true
	case strings.ToLower(tagMultipleStatements):
		return MultipleStatements, true
	case strings.ToLower(tagMultipleChoice):
		return MultipleChoice, true
	default:
		return SingleChoice, false
	}
}

// Answer is either a SingleAnswer or a MultiAnswer. A nil Answer means the
// question is unanswered (or, on a Question, that the key was withheld).
type Answer interface {
	isAnswer()
}

type SingleAnswer int

type MultiAnswer []int

func (SingleAnswer) isAnswer() {}
func (MultiAnswer) isAnswer()  {}

type Question struct {
	ID          string
	Text        string
	Options     []string
	Tag         string
	Type        QuestionType
	Correct     Answer
	Explanation string
}

type questionWire struct {
	ID            string          `json:"_id,omitempty"`
	AltID         string          `json:"id,omitempty"`
	Text          string          `json:"text"`
	Options       []string        `json:"options"`
	QuestionType  string          `json:"questionType,omitempty"`
	CorrectAnswer json.RawMessage `json:"correctAnswer,omitempty"`
	Explanation   string          `json:"explanation,omitempty"`
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var wire questionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	q.ID = wire.ID
	if q.ID == "" {
		q.ID = wire.AltID
	}
	q.Text = wire.Text
	q.Options = wire.Options
	q.Tag = wire.QuestionType
	q.Explanation = wire.Explanation
	q.Type, _ = ParseQuestionType(wire.QuestionType)

	correct, err := decodeCorrectAnswer(wire.CorrectAnswer, wire.Options)
	if err != nil {
		return err
	}
	q.Correct = correct
	return nil
}

func (q Question) MarshalJSON() ([]byte, error) {
	wire := struct {
		ID            string   `json:"_id,omitempty"`
		Text          string   `json:"text"`
		Options       []string `json:"options"`
		QuestionType  string   `json:"questionType"`
		CorrectAnswer any      `json:"correctAnswer,omitempty"`
		Explanation   string   `json:"explanation,omitempty"`
	}{
		ID:           q.ID,
		Text:         q.Text,
		Options:      q.Options,
		QuestionType: q.Type.String(),
		Explanation:  q.Explanation,
	}
	if q.Correct != nil {
		wire.CorrectAnswer = q.Correct
	}
	return json.Marshal(wire)
}

// Withheld reports whether the answer key is missing, as it is for
// non-owners before submission.
func (q Question) Withheld() bool {
	return q.Correct == nil
}

// decodeCorrectAnswer accepts a number, an array of numbers, a numeric
// string, or an option text (older editor revisions stored the text itself).
// An empty array is no key at all.
func decodeCorrectAnswer(raw json.RawMessage, options []string) (Answer, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var indexes []int
		if err := json.Unmarshal(raw, &indexes); err != nil {
			return nil, err
		}
		normalized := NormalizeAnswerSet(MultiAnswer(indexes))
		if len(normalized) == 0 {
			return nil, nil
		}
		return MultiAnswer(normalized), nil
	case '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
		if index, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
			return SingleAnswer(index), nil
		}
		for idx, option := range options {
			if option == text {
				return SingleAnswer(idx), nil
			}
		}
		return nil, nil
	default:
		var index int
		if err := json.Unmarshal(raw, &index); err != nil {
			return nil, err
		}
		return SingleAnswer(index), nil
	}
}

// EncodeAnswers renders a per-question answer array for submission:
// a number, an array, or null for each entry.
func EncodeAnswers(answers []Answer) []any {
	out := make([]any, len(answers))
	for idx, answer := range answers {
		switch value := answer.(type) {
		case SingleAnswer:
			out[idx] = int(value)
		case MultiAnswer:
			if len(value) == 0 {
				out[idx] = nil
				continue
			}
			out[idx] = []int(value)
		default:
			out[idx] = nil
		}
	}
	return out
}

// DecodeAnswers is the inverse of EncodeAnswers for a raw JSON array.
func DecodeAnswers(raw []json.RawMessage) ([]Answer, error) {
	out := make([]Answer, len(raw))
	for idx, item := range raw {
		answer, err := decodeCorrectAnswer(item, nil)
		if err != nil {
			return nil, err
		}
		out[idx] = answer
	}
	return out, nil
}
