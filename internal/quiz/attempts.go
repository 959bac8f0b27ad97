package quiz

import (
	"encoding/json"
	"strings"
	"time"
)

type AttemptRecord struct {
	ID             string    `json:"_id"`
	QuizID         string    `json:"quiz"`
	QuizTitle      string    `json:"quizTitle,omitempty"`
	AttemptNumber  int       `json:"attemptNumber,omitempty"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Duration       int       `json:"duration"`
	Deleted        bool      `json:"isDeleted"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts the quiz reference either as an id string or as an
// embedded quiz object.
func (a *AttemptRecord) UnmarshalJSON(data []byte) error {
	type plain AttemptRecord
	wire := struct {
		plain
		AltID string          `json:"id"`
		Quiz  json.RawMessage `json:"quiz"`
	}{}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*a = AttemptRecord(wire.plain)
	if a.ID == "" {
		a.ID = wire.AltID
	}
	a.QuizID = decodeQuizRef(wire.Quiz)
	return nil
}

func decodeQuizRef(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}

	if trimmed[0] == '{' {
		var ref struct {
			ID    string `json:"_id"`
			AltID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &ref); err != nil {
			return ""
		}
		if ref.ID != "" {
			return ref.ID
		}
		return ref.AltID
	}

	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return id
}

// CountActiveAttempts counts the caller's non-withdrawn attempts on a quiz.
func CountActiveAttempts(records []AttemptRecord, quizID string) int {
	count := 0
	for _, record := range records {
		if record.Deleted || record.QuizID != quizID {
			continue
		}
		count++
	}
	return count
}
