package devserver

import (
	"encoding/json"

	"quiz-player/internal/quiz"
)

type errorResponse struct {
	Error string `json:"error"`
}

type submitRequest struct {
	Answers  []json.RawMessage `json:"answers"`
	Duration int               `json:"duration"`
}

type submitResponse struct {
	Success        bool       `json:"success"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"totalQuestions"`
	Duration       int        `json:"duration"`
	AttemptID      string     `json:"attemptId"`
	Quiz           *quiz.Quiz `json:"quiz,omitempty"`
}

type tokenRequest struct {
	UserID string `json:"userId"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type successResponse struct {
	Success bool `json:"success"`
}
