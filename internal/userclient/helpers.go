package userclient

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"quiz-player/internal/quiz"
	"quiz-player/internal/session"
)

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  login <token>")
	fmt.Fprintln(out, "  logout")
	fmt.Fprintln(out, "  info <quiz_id>")
	fmt.Fprintln(out, "  start <quiz_id>")
	fmt.Fprintln(out, "  play <quiz_id>")
	fmt.Fprintln(out, "  preview <quiz_id>")
	fmt.Fprintln(out, "  history [limit]")
	fmt.Fprintln(out, "  attempts [quiz_id]")
	fmt.Fprintln(out, "  withdraw <attempt_id>")
	fmt.Fprintln(out, "  exit")
}

func printSessionHelp(out io.Writer) {
	fmt.Fprintln(out, "While playing:")
	fmt.Fprintln(out, "  <letter> [letter...]  choose an option (several toggle on multiple choice)")
	fmt.Fprintln(out, "  next | n, prev | p, goto <n>")
	fmt.Fprintln(out, "  status")
	fmt.Fprintln(out, "  submit")
	fmt.Fprintln(out, "  quit")
}

func printResultHelp(out io.Writer) {
	fmt.Fprintln(out, "After submitting:")
	fmt.Fprintln(out, "  review")
	fmt.Fprintln(out, "  retry")
	fmt.Fprintln(out, "  done")
}

func parsePositiveLimit(args []string, index int, defaultValue int) (int, error) {
	if len(args) <= index {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(args[index])
	if err != nil || value <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return value, nil
}

// parseOptionLetters maps fields like "A" or "c" to option indexes. Every
// field must be a single letter within range.
func parseOptionLetters(fields []string, optionCount int) ([]int, bool) {
	if len(fields) == 0 || optionCount < 1 {
		return nil, false
	}

	maxLetter := byte('A' + optionCount - 1)
	indexes := make([]int, 0, len(fields))
	for _, field := range fields {
		letter := strings.ToUpper(field)
		if len(letter) != 1 || letter[0] < 'A' || letter[0] > maxLetter {
			return nil, false
		}
		indexes = append(indexes, int(letter[0]-'A'))
	}
	return indexes, true
}

func optionLetter(index int) string {
	return string(rune('A' + index))
}

// limitMinutes renders a time limit the way the start screen shows it:
// rounded to whole minutes, never below one.
func limitMinutes(seconds int) int {
	return max(1, int(math.Round(float64(seconds)/60)))
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func typeHint(questionType quiz.QuestionType) string {
	switch questionType {
	case quiz.MultipleChoice:
		return "multiple choice: select all that apply"
	case quiz.MultipleStatements:
		return "statement: pick one"
	default:
		return "single choice"
	}
}

func isSelected(answer quiz.Answer, option int) bool {
	switch value := answer.(type) {
	case quiz.SingleAnswer:
		return int(value) == option
	case quiz.MultiAnswer:
		for _, selected := range value {
			if selected == option {
				return true
			}
		}
	}
	return false
}

func describeClientError(err error, serverURL string) error {
	var confirm *session.ConfirmationRequiredError
	switch {
	case errors.Is(err, session.ErrAttemptsExhausted):
		return errors.New("you have used all attempts for this quiz")
	case errors.Is(err, session.ErrAuthRequired):
		return errors.New("sign in required: use 'login <token>'")
	case errors.Is(err, session.ErrGateUnavailable):
		return errors.New("could not verify your remaining attempts, please try again")
	case errors.Is(err, ErrServiceUnavailable):
		return fmt.Errorf("quiz service unavailable at %s", serverURL)
	case errors.As(err, &confirm):
		return confirm
	}
	return err
}
