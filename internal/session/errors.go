package session

import (
	"errors"
	"fmt"
)

var (
	ErrLoadFailure       = errors.New("quiz could not be loaded")
	ErrAuthRequired      = errors.New("sign in required")
	ErrAttemptsExhausted = errors.New("no attempts remaining")
	ErrGateUnavailable   = errors.New("could not verify remaining attempts, please try again")
	ErrSubmissionFailure = errors.New("submission failed")
	ErrEnrichmentFailure = errors.New("review data unavailable")

	ErrNotInProgress  = errors.New("session is not in progress")
	ErrSubmitInFlight = errors.New("submission already in flight")
	ErrNotSubmitted   = errors.New("session has not been submitted")
)

// ConfirmationRequiredError is returned by a manual submit while questions
// are still unanswered. Submitting again with confirmation proceeds.
type ConfirmationRequiredError struct {
	Unanswered int
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("%d question(s) unanswered, confirm to submit", e.Unanswered)
}
