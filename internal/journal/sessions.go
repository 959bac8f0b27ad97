package journal

import (
	"context"
	"errors"
	"time"
)

const DefaultRecentLimit = 10

var ErrInvalidEntry = errors.New("invalid journal entry")

type Entry struct {
	SessionID  string
	QuizID     string
	Title      string
	Preview    bool
	Score      int
	Total      int
	Duration   int
	FinishedAt time.Time
}

// Record stores a finished session. Recording the same session twice keeps
// the first row.
func (s *SQLiteStore) Record(ctx context.Context, entry Entry) error {
	if entry.SessionID == "" || entry.QuizID == "" {
		return ErrInvalidEntry
	}
	if entry.FinishedAt.IsZero() {
		entry.FinishedAt = time.Now()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO sessions
			(session_id, quiz_id, title, preview, score, total, duration_sec, finished_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.QuizID,
		entry.Title,
		boolToInt(entry.Preview),
		entry.Score,
		entry.Total,
		entry.Duration,
		entry.FinishedAt.Unix(),
	)
	return err
}

// Recent returns up to limit sessions, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT session_id, quiz_id, title, preview, score, total, duration_sec, finished_at_unix
		 FROM sessions
		 ORDER BY finished_at_unix DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			entry      Entry
			preview    int
			finishedAt int64
		)
		if err := rows.Scan(
			&entry.SessionID,
			&entry.QuizID,
			&entry.Title,
			&preview,
			&entry.Score,
			&entry.Total,
			&entry.Duration,
			&finishedAt,
		); err != nil {
			return nil, err
		}
		entry.Preview = preview != 0
		entry.FinishedAt = time.Unix(finishedAt, 0)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
