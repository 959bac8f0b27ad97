package quiz

import (
	"encoding/json"
	"testing"
)

func TestParseQuestionTypeIgnoresCaseAndSpace(t *testing.T) {
	tests := []struct {
		tag    string
		want   QuestionType
		wantOK bool
	}{
		{tag: "singleChoice", want: SingleChoice, wantOK: true},
		{tag: " MultipleChoice ", want: MultipleChoice, wantOK: true},
		{tag: "multiplestatements", want: MultipleStatements, wantOK: true},
		{tag: "essay", want: SingleChoice, wantOK: false},
		{tag: "", want: SingleChoice, wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ParseQuestionType(tt.tag)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("ParseQuestionType(%q) = %v, %v; want %v, %v", tt.tag, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestQuestionUnmarshalCorrectAnswerShapes(t *testing.T) {
	payload := `[
		{"id": "q1", "text": "Pick", "options": ["a", "b"], "correctAnswer": 1},
		{"_id": "q2", "text": "Pick many", "options": ["a", "b", "c"], "correctAnswer": [2, 0, 2]},
		{"_id": "q3", "text": "By text", "options": ["red", "blue"], "correctAnswer": "blue"},
		{"_id": "q4", "text": "Stale text", "options": ["red", "blue"], "correctAnswer": "green"},
		{"_id": "q5", "text": "Hidden", "options": ["a", "b"]},
		{"_id": "q6", "text": "Numeric string", "options": ["a", "b"], "correctAnswer": " 1 "},
		{"_id": "q7", "text": "Empty set", "options": ["a", "b"], "correctAnswer": []}
	]`

	var questions []Question
	if err := json.Unmarshal([]byte(payload), &questions); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if questions[0].ID != "q1" {
		t.Fatalf("expected id fallback, got %q", questions[0].ID)
	}
	if got, ok := questions[0].Correct.(SingleAnswer); !ok || got != 1 {
		t.Fatalf("unexpected single key %#v", questions[0].Correct)
	}

	multi, ok := questions[1].Correct.(MultiAnswer)
	if !ok || len(multi) != 2 || multi[0] != 0 || multi[1] != 2 {
		t.Fatalf("expected normalized [0 2], got %#v", questions[1].Correct)
	}

	if got, ok := questions[2].Correct.(SingleAnswer); !ok || got != 1 {
		t.Fatalf("expected option text to map to index 1, got %#v", questions[2].Correct)
	}
	if !questions[3].Withheld() {
		t.Fatalf("unknown option text should leave the key empty")
	}
	if !questions[4].Withheld() {
		t.Fatalf("missing key should be withheld")
	}
	if got, ok := questions[5].Correct.(SingleAnswer); !ok || got != 1 {
		t.Fatalf("expected numeric string to decode as index 1, got %#v", questions[5].Correct)
	}
	if questions[6].Correct != nil {
		t.Fatalf("empty key set should be withheld, got %#v", questions[6].Correct)
	}

	keyless := Quiz{Questions: questions[6:]}
	if keyless.HasAnswerKey() {
		t.Fatalf("a quiz whose only key is an empty set has no answer key")
	}
}

func TestQuestionMarshalWritesResolvedType(t *testing.T) {
	question := Question{ID: "q1", Text: "T", Options: []string{"a", "b"}, Type: MultipleChoice, Correct: MultiAnswer{0, 1}}

	data, err := json.Marshal(question)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Question
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != MultipleChoice || decoded.Tag != "multipleChoice" {
		t.Fatalf("type lost on the wire: %v %q", decoded.Type, decoded.Tag)
	}

	hidden, err := json.Marshal(Quiz{Questions: []Question{question}}.Public().Questions[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(hidden, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := wire["correctAnswer"]; ok {
		t.Fatalf("withheld key must be omitted, got %s", hidden)
	}
}
