package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"quiz-player/internal/quiz"
)

type State int

const (
	StateLoading State = iota
	StateInProgress
	StateSubmitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateInProgress:
		return "in_progress"
	case StateSubmitted:
		return "submitted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Trigger int

const (
	TriggerManual Trigger = iota
	TriggerTimer
)

func (t Trigger) String() string {
	if t == TriggerTimer {
		return "timer"
	}
	return "manual"
}

// Backend is everything the controller needs from the quiz service.
type Backend interface {
	AttemptLister
	Submitter
	FetchPlayQuiz(ctx context.Context, quizID string) (quiz.Quiz, error)
}

// attempt is the live state of one run through a quiz. Only Controller
// touches it, always under Controller.mu.
type attempt struct {
	id         string
	quiz       quiz.Quiz
	state      State
	index      int
	answers    *AnswerStore
	timer      *Timer
	autoFired  bool
	submitting bool
	outcome    *Outcome
	err        error
}

// View is a read-only copy of the session for rendering.
type View struct {
	SessionID  string
	Quiz       quiz.Quiz
	State      State
	Index      int
	Answers    []quiz.Answer
	Unanswered int
	Elapsed    int
	Remaining  int
	Countdown  bool
	AutoFired  bool
	Submitting bool
	Outcome    *Outcome
	Err        error
}

func (v View) Current() (quiz.Question, bool) {
	if v.Index < 0 || v.Index >= len(v.Quiz.Questions) {
		return quiz.Question{}, false
	}
	return v.Quiz.Questions[v.Index], true
}

type Controller struct {
	mu         sync.Mutex
	backend    Backend
	gate       *Gate
	reconciler *Reconciler
	log        *slog.Logger
	current    *attempt
}

func NewController(backend Backend, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		backend:    backend,
		gate:       NewGate(backend),
		reconciler: NewReconciler(backend),
		log:        logger,
	}
}

// Load starts a fresh session. Previews fetch the full quiz and skip the
// attempt gate; real sessions fetch the play view and, when the quiz limits
// attempts, must pass the gate before any answer can be captured.
func (c *Controller) Load(ctx context.Context, quizID string, preview bool) error {
	a := &attempt{id: uuid.NewString(), state: StateLoading}
	c.mu.Lock()
	c.current = a
	c.mu.Unlock()

	loaded, err := c.prepare(ctx, quizID, preview)
	if err != nil {
		return c.fail(a, err)
	}
	return c.start(a, loaded)
}

// prepare fetches the quiz and runs the attempt gate. It is the only place
// the gate is consulted when a session begins.
func (c *Controller) prepare(ctx context.Context, quizID string, preview bool) (quiz.Quiz, error) {
	var (
		loaded quiz.Quiz
		err    error
	)
	if preview {
		loaded, err = c.backend.FetchFullQuiz(ctx, quizID)
	} else {
		loaded, err = c.backend.FetchPlayQuiz(ctx, quizID)
	}
	if err == nil && len(loaded.Questions) == 0 {
		err = fmt.Errorf("quiz %s has no questions", quizID)
	}
	if err == nil && preview && !loaded.HasAnswerKey() {
		err = fmt.Errorf("quiz %s has no answer key to preview against", quizID)
	}
	if err != nil {
		return quiz.Quiz{}, classifyLoadError(err)
	}

	loaded.Preview = preview
	if loaded.ID == "" {
		loaded.ID = quizID
	}

	if !preview && loaded.LimitedAttempts() {
		if _, err := c.gate.CheckEntry(ctx, loaded.ID, loaded.MaxAttempts); err != nil {
			return quiz.Quiz{}, err
		}
	}
	return loaded, nil
}

func (c *Controller) start(a *attempt, loaded quiz.Quiz) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != a {
		return ErrNotInProgress
	}
	a.quiz = loaded
	a.answers = NewAnswerStore(loaded.Questions)
	a.timer = NewTimer(loaded.TimeLimit)
	a.state = StateInProgress

	c.log.Info("session loaded",
		"session_id", a.id,
		"quiz_id", loaded.ID,
		"preview", loaded.Preview,
		"questions", len(loaded.Questions),
		"time_limit", loaded.TimeLimit,
	)
	return nil
}

func (c *Controller) fail(a *attempt, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == a {
		a.state = StateFailed
		a.err = err
	}
	c.log.Warn("session failed", "session_id", a.id, "error", err)
	return err
}

func classifyLoadError(err error) error {
	if errors.Is(err, quiz.ErrUnauthorized) {
		return fmt.Errorf("%w: %v", ErrAuthRequired, err)
	}
	return fmt.Errorf("%w: %v", ErrLoadFailure, err)
}

func (c *Controller) Next() int {
	return c.navigate(func(current int) int { return current + 1 })
}

func (c *Controller) Prev() int {
	return c.navigate(func(current int) int { return current - 1 })
}

// JumpTo moves to index, clamped to the question range, and returns the
// resulting index.
func (c *Controller) JumpTo(index int) int {
	return c.navigate(func(int) int { return index })
}

func (c *Controller) navigate(target func(current int) int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	a := c.current
	if a == nil {
		return 0
	}
	if a.state != StateInProgress {
		return a.index
	}

	last := len(a.quiz.Questions) - 1
	a.index = min(max(target(a.index), 0), last)
	return a.index
}

// Select records an option on the current question. Answers are locked
// while a submission is in flight and once the countdown has run out.
func (c *Controller) Select(optionIndex int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	a := c.current
	if a == nil || a.state != StateInProgress || a.submitting || a.timer.Expired() {
		return false
	}
	return a.answers.Select(a.index, optionIndex)
}

// Tick advances the session clock by one second. When a countdown reaches
// zero the attempt is submitted without confirmation; the returned outcome
// is non-nil only in that case.
func (c *Controller) Tick(ctx context.Context) (*Outcome, error) {
	c.mu.Lock()
	a := c.current
	if a == nil || a.state != StateInProgress {
		c.mu.Unlock()
		return nil, nil
	}
	a.timer.Tick()
	// An expiry that lands while a manual submit is in flight is left due, so
	// the next tick fires it if that submit fails.
	due := a.timer.Expired() && !a.autoFired && !a.submitting
	c.mu.Unlock()

	if !due {
		return nil, nil
	}
	c.log.Info("auto-submit fired", "session_id", a.id, "quiz_id", a.quiz.ID)
	outcome, err := c.submit(ctx, TriggerTimer, true)
	if errors.Is(err, ErrSubmitInFlight) || errors.Is(err, ErrNotInProgress) {
		// A manual submit got there first.
		return nil, nil
	}
	return outcome, err
}

// Submit is the user's submit action. With unanswered questions and
// confirmed unset it returns *ConfirmationRequiredError and changes nothing.
func (c *Controller) Submit(ctx context.Context, confirmed bool) (*Outcome, error) {
	return c.submit(ctx, TriggerManual, confirmed)
}

func (c *Controller) submit(ctx context.Context, trigger Trigger, confirmed bool) (*Outcome, error) {
	a, snapshot, err := c.beginSubmit(trigger, confirmed)
	if err != nil {
		return nil, err
	}

	outcome, err := c.reconciler.Reconcile(ctx, snapshot.quiz, snapshot.answers, snapshot.elapsed)
	return c.finishSubmit(a, trigger, outcome, err)
}

type submitSnapshot struct {
	quiz    quiz.Quiz
	answers []quiz.Answer
	elapsed int
}

// beginSubmit claims the single submission slot. The check and the claim
// happen under one lock, so a timer expiry and a user submit landing
// together produce one request.
func (c *Controller) beginSubmit(trigger Trigger, confirmed bool) (*attempt, submitSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a := c.current
	if a == nil || a.state != StateInProgress {
		return nil, submitSnapshot{}, ErrNotInProgress
	}
	if a.submitting {
		return nil, submitSnapshot{}, ErrSubmitInFlight
	}

	switch trigger {
	case TriggerTimer:
		if a.autoFired {
			return nil, submitSnapshot{}, ErrSubmitInFlight
		}
		a.autoFired = true
	case TriggerManual:
		if unanswered := a.answers.Unanswered(); unanswered > 0 && !confirmed {
			return nil, submitSnapshot{}, &ConfirmationRequiredError{Unanswered: unanswered}
		}
	}

	a.submitting = true
	return a, submitSnapshot{
		quiz:    a.quiz,
		answers: a.answers.Snapshot(),
		elapsed: a.timer.Elapsed(),
	}, nil
}

func (c *Controller) finishSubmit(a *attempt, trigger Trigger, outcome Outcome, err error) (*Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != a {
		// The session was discarded while the request was in flight.
		return nil, ErrNotInProgress
	}
	a.submitting = false

	if err != nil {
		c.log.Warn("submission failed",
			"session_id", a.id,
			"quiz_id", a.quiz.ID,
			"trigger", trigger.String(),
			"error", err,
		)
		return nil, err
	}

	a.state = StateSubmitted
	a.answers.Freeze()
	a.timer.Halt()
	a.outcome = &outcome

	c.log.Info("session submitted",
		"session_id", a.id,
		"quiz_id", a.quiz.ID,
		"preview", a.quiz.Preview,
		"trigger", trigger.String(),
		"score", outcome.Score,
		"total", outcome.Total,
		"duration", outcome.Duration,
	)
	result := outcome
	return &result, nil
}

// Retry discards a submitted session and loads a fresh one. Real quizzes
// with an attempt limit pass the gate again, since the server has counted
// the attempt that just finished; any failure leaves the submitted session
// in place.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	a := c.current
	if a == nil || a.state != StateSubmitted {
		c.mu.Unlock()
		return ErrNotSubmitted
	}
	finished := a.quiz
	c.mu.Unlock()

	loaded, err := c.prepare(ctx, finished.ID, finished.Preview)
	if err != nil {
		return err
	}

	next := &attempt{id: uuid.NewString(), state: StateLoading}
	c.mu.Lock()
	if c.current != a {
		c.mu.Unlock()
		return ErrNotSubmitted
	}
	c.current = next
	c.mu.Unlock()
	return c.start(next, loaded)
}

// Close discards the current session. Results of requests still in flight
// are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

func (c *Controller) View() (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a := c.current
	if a == nil {
		return View{}, false
	}

	view := View{
		SessionID:  a.id,
		Quiz:       cloneQuiz(a.quiz),
		State:      a.state,
		Index:      a.index,
		AutoFired:  a.autoFired,
		Submitting: a.submitting,
		Err:        a.err,
	}
	if a.answers != nil {
		view.Answers = a.answers.Snapshot()
		view.Unanswered = a.answers.Unanswered()
	}
	if a.timer != nil {
		view.Elapsed = a.timer.Elapsed()
		view.Remaining = a.timer.Remaining()
		view.Countdown = a.timer.Countdown()
	}
	if a.outcome != nil {
		outcome := *a.outcome
		view.Outcome = &outcome
	}
	return view, true
}

func cloneQuiz(q quiz.Quiz) quiz.Quiz {
	clone := q
	clone.Questions = make([]quiz.Question, len(q.Questions))
	for idx, question := range q.Questions {
		question.Options = slices.Clone(question.Options)
		question.Correct = cloneAnswer(question.Correct)
		clone.Questions[idx] = question
	}
	return clone
}
