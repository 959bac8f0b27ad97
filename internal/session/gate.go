package session

import (
	"context"
	"errors"
	"fmt"

	"quiz-player/internal/quiz"
)

type AttemptLister interface {
	ListAttempts(ctx context.Context) ([]quiz.AttemptRecord, error)
}

// Quota is the caller's standing on one quiz. Max <= 0 means unlimited.
type Quota struct {
	Used int
	Max  int
}

func (q Quota) Unlimited() bool {
	return q.Max <= 0
}

func (q Quota) Remaining() int {
	if q.Unlimited() {
		return -1
	}
	if q.Used >= q.Max {
		return 0
	}
	return q.Max - q.Used
}

// Gate decides whether the caller may start another real attempt. The server
// remains the authority; this only avoids starting sessions that would be
// rejected.
type Gate struct {
	attempts AttemptLister
}

func NewGate(attempts AttemptLister) *Gate {
	return &Gate{attempts: attempts}
}

// CheckEntry never fails open: any error other than "no history" denies entry.
func (g *Gate) CheckEntry(ctx context.Context, quizID string, maxAttempts int) (Quota, error) {
	if maxAttempts <= 0 {
		return Quota{Max: maxAttempts}, nil
	}

	quota := Quota{Max: maxAttempts}
	records, err := g.attempts.ListAttempts(ctx)
	switch {
	case err == nil:
		quota.Used = quiz.CountActiveAttempts(records, quizID)
	case errors.Is(err, quiz.ErrNotFound):
		quota.Used = 0
	case errors.Is(err, quiz.ErrUnauthorized):
		return quota, fmt.Errorf("%w: %v", ErrAuthRequired, err)
	default:
		return quota, fmt.Errorf("%w: %v", ErrGateUnavailable, err)
	}

	if quota.Used >= quota.Max {
		return quota, fmt.Errorf("%w: used %d of %d", ErrAttemptsExhausted, quota.Used, quota.Max)
	}
	return quota, nil
}
