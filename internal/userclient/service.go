package userclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"quiz-player/internal/auth"
	"quiz-player/internal/journal"
	"quiz-player/internal/quiz"
	"quiz-player/internal/session"
	"quiz-player/internal/startmark"
)

const (
	defaultHistoryLimit = 10
	defaultHTTPTimeout  = 5 * time.Second
	defaultTickInterval = time.Second
	journalTimeout      = 2 * time.Second
)

// Journal stores finished sessions for the history command.
type Journal interface {
	Record(ctx context.Context, entry journal.Entry) error
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

type Config struct {
	ServerURL    string
	Token        string
	HTTPTimeout  time.Duration
	TickInterval time.Duration
	HistoryLimit int

	// Marks defaults to in-memory marks. Journal may be nil, which disables
	// history.
	Marks   startmark.Marks
	Journal Journal
	Logger  *slog.Logger
}

// Run drives the terminal player until exit, end of input, or ctx is done.
// User lines and timer ticks are handled by one loop, one at a time.
func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = defaultTickInterval
	}

	creds := auth.NewStore(cfg.Token)
	client := NewHTTPClient(serverURL, &http.Client{Timeout: timeout}, creds)
	p := newPlayer(ctx, out, client, creds, cfg)

	fmt.Fprintf(out, "quiz-player\nserver=%s\n", serverURL)
	if creds.Valid() {
		fmt.Fprintln(out, "signed in")
	}
	fmt.Fprintln(out)
	printHelp(out)

	done := make(chan struct{})
	defer close(done)
	lines := readLines(in, done)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	p.prompt()
	for {
		select {
		case <-ctx.Done():
			p.teardown()
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				p.teardown()
				return nil
			}
			if p.handleLine(line) {
				p.teardown()
				return nil
			}
			p.prompt()
		case <-ticker.C:
			if p.tick() {
				p.prompt()
			}
		}
	}
}

func readLines(in io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}

type player struct {
	ctx          context.Context
	out          io.Writer
	client       *HTTPClient
	creds        *auth.Store
	ctrl         *session.Controller
	gate         *session.Gate
	marks        startmark.Marks
	journal      Journal
	log          *slog.Logger
	historyLimit int

	// returnTo is the quiz an entry was headed to when sign-in was required.
	returnTo       string
	returnPreview  bool
	confirmPending bool
}

func newPlayer(ctx context.Context, out io.Writer, client *HTTPClient, creds *auth.Store, cfg Config) *player {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	marks := cfg.Marks
	if marks == nil {
		marks = startmark.NewMemoryMarks()
	}
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}

	return &player{
		ctx:          ctx,
		out:          out,
		client:       client,
		creds:        creds,
		ctrl:         session.NewController(client, logger),
		gate:         session.NewGate(client),
		marks:        marks,
		journal:      cfg.Journal,
		log:          logger,
		historyLimit: historyLimit,
	}
}

func (p *player) prompt() {
	view, ok := p.ctrl.View()
	switch {
	case p.confirmPending:
		fmt.Fprint(p.out, "submit anyway? (yes/no): ")
	case ok && view.State == session.StateInProgress:
		fmt.Fprint(p.out, "\nquiz> ")
	case ok && view.State == session.StateSubmitted:
		fmt.Fprint(p.out, "\nresult> ")
	default:
		fmt.Fprint(p.out, "\n> ")
	}
}

// handleLine processes one line of input and reports whether the player
// should exit.
func (p *player) handleLine(line string) bool {
	line = strings.TrimSpace(line)
	if p.confirmPending {
		p.confirmPending = false
		switch strings.ToLower(line) {
		case "y", "yes":
			p.submit(true)
		default:
			fmt.Fprintln(p.out, "Submission cancelled.")
		}
		return false
	}
	if line == "" {
		return false
	}

	args := strings.Fields(line)
	view, ok := p.ctrl.View()
	if ok {
		switch view.State {
		case session.StateInProgress:
			p.handleSessionCommand(view, args)
			return false
		case session.StateSubmitted:
			p.handleResultCommand(view, args)
			return false
		}
	}
	return p.handleMenuCommand(args)
}

func (p *player) handleMenuCommand(args []string) bool {
	command := strings.ToLower(args[0])
	switch command {
	case "help":
		printHelp(p.out)
	case "exit", "quit":
		return true
	case "login":
		if len(args) != 2 {
			fmt.Fprintln(p.out, "usage: login <token>")
			return false
		}
		p.login(args[1])
	case "logout":
		p.creds.Clear()
		p.returnTo = ""
		p.returnPreview = false
		fmt.Fprintln(p.out, "Signed out.")
	case "info", "start", "play", "preview":
		if len(args) != 2 {
			fmt.Fprintf(p.out, "usage: %s <quiz_id>\n", command)
			return false
		}
		switch command {
		case "info":
			p.info(args[1])
		case "start":
			p.start(args[1])
		case "play":
			p.play(args[1])
		case "preview":
			p.beginSession(args[1], true)
		}
	case "history":
		limit, err := parsePositiveLimit(args, 1, p.historyLimit)
		if err != nil {
			fmt.Fprintf(p.out, "invalid history limit: %v\n", err)
			return false
		}
		p.history(limit)
	case "attempts":
		if len(args) > 2 {
			fmt.Fprintln(p.out, "usage: attempts [quiz_id]")
			return false
		}
		quizID := ""
		if len(args) == 2 {
			quizID = args[1]
		}
		p.attempts(quizID)
	case "withdraw":
		if len(args) != 2 {
			fmt.Fprintln(p.out, "usage: withdraw <attempt_id>")
			return false
		}
		p.withdraw(args[1])
	default:
		fmt.Fprintln(p.out, "unknown command. type 'help' for usage.")
	}
	return false
}

func (p *player) login(token string) {
	p.creds.Set(token)
	if !p.creds.Valid() {
		fmt.Fprintln(p.out, "token is expired or empty")
		return
	}
	if subject := p.creds.Subject(); subject != "" {
		fmt.Fprintf(p.out, "Signed in as %s.\n", subject)
	} else {
		fmt.Fprintln(p.out, "Signed in.")
	}

	if p.returnTo != "" {
		quizID, preview := p.returnTo, p.returnPreview
		p.returnTo, p.returnPreview = "", false
		fmt.Fprintf(p.out, "Continuing to quiz %s.\n", quizID)
		if preview {
			p.beginSession(quizID, true)
			return
		}
		p.start(quizID)
	}
}

func (p *player) info(quizID string) {
	loaded, err := p.client.FetchPlayQuiz(p.ctx, quizID)
	if err != nil {
		p.printError(err)
		return
	}

	fmt.Fprintf(p.out, "%s\n", loaded.Title)
	if loaded.Difficulty != "" {
		fmt.Fprintf(p.out, "Difficulty: %s\n", loaded.Difficulty)
	}
	fmt.Fprintf(p.out, "Questions: %d\n", len(loaded.Questions))
	if loaded.Countdown() {
		fmt.Fprintf(p.out, "Time limit: %d minute(s)\n", limitMinutes(loaded.TimeLimit))
	} else {
		fmt.Fprintln(p.out, "Time limit: none")
	}

	if !loaded.LimitedAttempts() {
		fmt.Fprintln(p.out, "Attempts: unlimited")
	} else {
		fmt.Fprintf(p.out, "Attempts: %d\n", loaded.MaxAttempts)
		if p.creds.Valid() {
			quota, gateErr := p.gate.CheckEntry(p.ctx, loaded.ID, loaded.MaxAttempts)
			if gateErr == nil || errors.Is(gateErr, session.ErrAttemptsExhausted) {
				fmt.Fprintf(p.out, "Remaining: %d\n", quota.Remaining())
			}
		}
	}
	fmt.Fprintf(p.out, "Type 'start %s' to begin.\n", loaded.ID)
}

// start is the entry path for a real attempt: sign-in, then the start mark.
// The attempt gate runs as the session loads.
func (p *player) start(quizID string) {
	if !p.creds.Valid() {
		p.requireSignIn(quizID, false)
		return
	}

	if err := p.marks.Set(p.ctx, quizID); err != nil {
		p.log.Warn("start mark not set", "quiz_id", quizID, "error", err)
	}
	p.beginSession(quizID, false)
}

// requireSignIn remembers where the user was headed so login can resume it.
func (p *player) requireSignIn(quizID string, preview bool) {
	p.returnTo = quizID
	p.returnPreview = preview
	fmt.Fprintln(p.out, "Sign in required: use 'login <token>'. The quiz will start after sign-in.")
}

func (p *player) play(quizID string) {
	marked, err := p.marks.Has(p.ctx, quizID)
	if err != nil {
		p.log.Warn("start mark lookup failed", "quiz_id", quizID, "error", err)
	}
	if !marked {
		fmt.Fprintln(p.out, "This quiz has not been started yet.")
		p.info(quizID)
		return
	}
	p.beginSession(quizID, false)
}

func (p *player) beginSession(quizID string, preview bool) {
	if err := p.ctrl.Load(p.ctx, quizID, preview); err != nil {
		p.ctrl.Close()
		if !preview {
			p.clearMark(quizID)
		}
		if errors.Is(err, session.ErrAuthRequired) {
			p.requireSignIn(quizID, preview)
			return
		}
		p.printError(err)
		return
	}

	view, _ := p.ctrl.View()
	if preview {
		fmt.Fprintf(p.out, "Previewing %s (not recorded).\n", view.Quiz.Title)
	} else {
		fmt.Fprintf(p.out, "Starting %s.\n", view.Quiz.Title)
	}
	if view.Countdown {
		fmt.Fprintf(p.out, "You have %s.\n", formatClock(view.Remaining))
	}
	printSessionHelp(p.out)
	p.renderQuestion(view)
}

func (p *player) handleSessionCommand(view session.View, args []string) {
	command := strings.ToLower(args[0])
	switch command {
	case "help":
		printSessionHelp(p.out)
	case "next", "n":
		p.ctrl.Next()
		p.renderCurrent()
	case "prev", "p":
		p.ctrl.Prev()
		p.renderCurrent()
	case "goto":
		if len(args) != 2 {
			fmt.Fprintln(p.out, "usage: goto <n>")
			return
		}
		target, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintln(p.out, "usage: goto <n>")
			return
		}
		p.ctrl.JumpTo(target - 1)
		p.renderCurrent()
	case "status":
		p.renderStatus(view)
	case "submit":
		p.submit(false)
	case "quit":
		p.teardown()
		fmt.Fprintln(p.out, "Quiz abandoned.")
	default:
		p.selectOptions(view, args)
	}
}

func (p *player) selectOptions(view session.View, args []string) {
	question, ok := view.Current()
	if !ok {
		return
	}
	indexes, valid := parseOptionLetters(args, len(question.Options))
	if !valid {
		fmt.Fprintf(p.out, "Choose an option A-%s, or type 'help'.\n", optionLetter(len(question.Options)-1))
		return
	}
	if !quiz.IsMultiple(question) && len(indexes) > 1 {
		fmt.Fprintln(p.out, "This question takes one answer.")
		return
	}

	for _, index := range indexes {
		if !p.ctrl.Select(index) {
			fmt.Fprintln(p.out, "Answers can no longer be changed.")
			return
		}
	}
	p.renderCurrent()
}

func (p *player) submit(confirmed bool) {
	outcome, err := p.ctrl.Submit(p.ctx, confirmed)
	var confirm *session.ConfirmationRequiredError
	switch {
	case errors.As(err, &confirm):
		fmt.Fprintf(p.out, "%d question(s) unanswered.\n", confirm.Unanswered)
		p.confirmPending = true
		return
	case err != nil:
		p.printError(err)
		return
	}
	p.finish(outcome)
}

// tick advances the session clock and reports whether anything was printed.
func (p *player) tick() bool {
	view, ok := p.ctrl.View()
	if !ok || view.State != session.StateInProgress {
		return false
	}

	outcome, err := p.ctrl.Tick(p.ctx)
	if err != nil {
		p.confirmPending = false
		fmt.Fprintf(p.out, "\nTime is up, but the automatic submission failed: %v\n", describeClientError(err, p.client.BaseURL()))
		fmt.Fprintln(p.out, "Type 'submit' to try again.")
		return true
	}
	if outcome != nil {
		p.confirmPending = false
		fmt.Fprintln(p.out, "\nTime is up. Your answers were submitted automatically.")
		p.finish(outcome)
		return true
	}

	if view.Countdown {
		switch remaining := view.Remaining - 1; remaining {
		case 60, 10:
			fmt.Fprintf(p.out, "\n%d seconds left.\n", remaining)
			return true
		}
	}
	return false
}

func (p *player) finish(outcome *session.Outcome) {
	view, _ := p.ctrl.View()
	p.renderOutcome(outcome)
	p.record(view, outcome)
	printResultHelp(p.out)
}

func (p *player) record(view session.View, outcome *session.Outcome) {
	if p.journal == nil {
		return
	}

	ctx, cancel := context.WithTimeout(p.ctx, journalTimeout)
	defer cancel()
	err := p.journal.Record(ctx, journal.Entry{
		SessionID:  view.SessionID,
		QuizID:     view.Quiz.ID,
		Title:      view.Quiz.Title,
		Preview:    view.Quiz.Preview,
		Score:      outcome.Score,
		Total:      outcome.Total,
		Duration:   outcome.Duration,
		FinishedAt: time.Now(),
	})
	if err != nil {
		p.log.Warn("journal record failed", "session_id", view.SessionID, "error", err)
	}
}

func (p *player) handleResultCommand(view session.View, args []string) {
	switch strings.ToLower(args[0]) {
	case "help":
		printResultHelp(p.out)
	case "review":
		p.renderReview(view)
	case "retry":
		if err := p.ctrl.Retry(p.ctx); err != nil {
			if errors.Is(err, session.ErrAuthRequired) {
				p.teardown()
				p.requireSignIn(view.Quiz.ID, view.Quiz.Preview)
				return
			}
			p.printError(err)
			return
		}
		retried, _ := p.ctrl.View()
		fmt.Fprintf(p.out, "Starting %s again.\n", retried.Quiz.Title)
		p.renderQuestion(retried)
	case "done", "quit", "exit":
		p.teardown()
	default:
		fmt.Fprintln(p.out, "unknown command. type 'help' for usage.")
	}
}

func (p *player) teardown() {
	p.confirmPending = false
	view, ok := p.ctrl.View()
	if !ok {
		return
	}
	p.ctrl.Close()
	if !view.Quiz.Preview {
		p.clearMark(view.Quiz.ID)
	}
}

func (p *player) clearMark(quizID string) {
	if quizID == "" {
		return
	}
	if err := p.marks.Clear(context.WithoutCancel(p.ctx), quizID); err != nil {
		p.log.Warn("start mark not cleared", "quiz_id", quizID, "error", err)
	}
}

func (p *player) history(limit int) {
	if p.journal == nil {
		fmt.Fprintln(p.out, "History is disabled.")
		return
	}

	entries, err := p.journal.Recent(p.ctx, limit)
	if err != nil {
		fmt.Fprintf(p.out, "error: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "No finished quizzes yet.")
		return
	}

	fmt.Fprintln(p.out, "Recent quizzes:")
	for idx, entry := range entries {
		label := ""
		if entry.Preview {
			label = " (preview)"
		}
		fmt.Fprintf(p.out, "%d. %s%s score=%d/%d time=%s finished=%s\n",
			idx+1,
			entry.Title,
			label,
			entry.Score,
			entry.Total,
			formatClock(entry.Duration),
			entry.FinishedAt.Format(time.RFC3339),
		)
	}
}

// attempts lists the caller's server-side attempts, optionally for one quiz.
// Withdrawn attempts are shown but do not count toward a quota.
func (p *player) attempts(quizID string) {
	if !p.creds.Valid() {
		fmt.Fprintln(p.out, "Sign in required: use 'login <token>'.")
		return
	}

	records, err := p.client.ListAttempts(p.ctx)
	if err != nil && !errors.Is(err, quiz.ErrNotFound) {
		p.printError(err)
		return
	}

	shown := 0
	for _, record := range records {
		if quizID != "" && record.QuizID != quizID {
			continue
		}
		if shown == 0 {
			fmt.Fprintln(p.out, "Attempts:")
		}
		shown++

		title := record.QuizTitle
		if title == "" {
			title = record.QuizID
		}
		status := ""
		if record.Deleted {
			status = " (withdrawn)"
		}
		fmt.Fprintf(p.out, "%s  %s #%d score=%d/%d time=%s%s\n",
			record.ID,
			title,
			record.AttemptNumber,
			record.Score,
			record.TotalQuestions,
			formatClock(record.Duration),
			status,
		)
	}
	if shown == 0 {
		fmt.Fprintln(p.out, "No attempts recorded.")
	}
}

func (p *player) withdraw(attemptID string) {
	if !p.creds.Valid() {
		fmt.Fprintln(p.out, "Sign in required: use 'login <token>'.")
		return
	}
	if err := p.client.DeleteAttempt(p.ctx, attemptID); err != nil {
		p.printError(err)
		return
	}
	fmt.Fprintf(p.out, "Attempt %s withdrawn.\n", attemptID)
}

func (p *player) printError(err error) {
	fmt.Fprintf(p.out, "error: %v\n", describeClientError(err, p.client.BaseURL()))
}

func (p *player) renderCurrent() {
	view, ok := p.ctrl.View()
	if !ok {
		return
	}
	p.renderQuestion(view)
}

func (p *player) renderQuestion(view session.View) {
	question, ok := view.Current()
	if !ok {
		return
	}

	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "Question %d/%d [%s]  %s\n",
		view.Index+1,
		len(view.Quiz.Questions),
		typeHint(question.Type),
		clockLabel(view),
	)
	fmt.Fprintf(p.out, "%s\n\n", question.Text)

	var answer quiz.Answer
	if view.Index < len(view.Answers) {
		answer = view.Answers[view.Index]
	}
	for idx, option := range question.Options {
		marker := " "
		if isSelected(answer, idx) {
			marker = "*"
		}
		fmt.Fprintf(p.out, " %s %s. %s\n", marker, optionLetter(idx), option)
	}
}

func (p *player) renderStatus(view session.View) {
	fmt.Fprintf(p.out, "%s  %d/%d answered  %s\n",
		view.Quiz.Title,
		len(view.Quiz.Questions)-view.Unanswered,
		len(view.Quiz.Questions),
		clockLabel(view),
	)
	for idx := range view.Quiz.Questions {
		mark := " "
		if idx < len(view.Answers) && quiz.IsAnswered(view.Quiz.Questions[idx], view.Answers[idx]) {
			mark = "x"
		}
		current := ""
		if idx == view.Index {
			current = "  <"
		}
		fmt.Fprintf(p.out, "  [%s] %d%s\n", mark, idx+1, current)
	}
}

func clockLabel(view session.View) string {
	if view.Countdown {
		return "time left " + formatClock(view.Remaining)
	}
	return "elapsed " + formatClock(view.Elapsed)
}

func (p *player) renderOutcome(outcome *session.Outcome) {
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "Score: %d/%d\n", outcome.Score, outcome.Total)
	fmt.Fprintf(p.out, "Time: %s\n", formatClock(outcome.Duration))
	if outcome.ReviewErr != nil {
		fmt.Fprintln(p.out, "Detailed review is unavailable for this attempt.")
	}
}

func (p *player) renderReview(view session.View) {
	if view.Outcome == nil || view.Outcome.Review == nil {
		fmt.Fprintln(p.out, "Detailed review is unavailable for this attempt.")
		return
	}

	for idx, question := range view.Outcome.Review.Questions {
		var answer quiz.Answer
		if idx < len(view.Answers) {
			answer = view.Answers[idx]
		}

		verdict := "incorrect"
		switch {
		case !quiz.IsAnswered(question, answer):
			verdict = "unanswered"
		case quiz.IsCorrect(question, answer):
			verdict = "correct"
		}

		fmt.Fprintln(p.out)
		fmt.Fprintf(p.out, "%d. %s (%s)\n", idx+1, question.Text, verdict)
		for optIdx, option := range question.Options {
			notes := make([]string, 0, 2)
			if isSelected(question.Correct, optIdx) {
				notes = append(notes, "correct")
			}
			if isSelected(answer, optIdx) {
				notes = append(notes, "your answer")
			}
			suffix := ""
			if len(notes) > 0 {
				suffix = "  <- " + strings.Join(notes, ", ")
			}
			fmt.Fprintf(p.out, "   %s. %s%s\n", optionLetter(optIdx), option, suffix)
		}
		if question.Explanation != "" {
			fmt.Fprintf(p.out, "   Explanation: %s\n", question.Explanation)
		}
	}
}
