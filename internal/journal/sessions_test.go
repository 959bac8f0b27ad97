package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
		_ = os.Remove(path)
	})
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0)

	require.NoError(t, store.Record(ctx, Entry{SessionID: "s1", QuizID: "q1", Title: "First", Score: 1, Total: 3, Duration: 40, FinishedAt: base}))
	require.NoError(t, store.Record(ctx, Entry{SessionID: "s2", QuizID: "q2", Title: "Second", Preview: true, Score: 2, Total: 2, Duration: 12, FinishedAt: base.Add(time.Minute)}))
	require.NoError(t, store.Record(ctx, Entry{SessionID: "s3", QuizID: "q1", Title: "First", Score: 3, Total: 3, Duration: 30, FinishedAt: base.Add(2 * time.Minute)}))

	entries, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "s3", entries[0].SessionID)
	require.Equal(t, "s2", entries[1].SessionID)
	require.True(t, entries[1].Preview)
	require.Equal(t, base.Add(time.Minute).Unix(), entries[1].FinishedAt.Unix())

	entries, err = store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestRecordIsIdempotentPerSession(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, Entry{SessionID: "s1", QuizID: "q1", Score: 1, Total: 2}))
	require.NoError(t, store.Record(ctx, Entry{SessionID: "s1", QuizID: "q1", Score: 2, Total: 2}))

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, entries[0].Score)
}

func TestRecordRejectsIncompleteEntry(t *testing.T) {
	store := newTestSQLiteStore(t)
	require.ErrorIs(t, store.Record(context.Background(), Entry{QuizID: "q1"}), ErrInvalidEntry)
	require.ErrorIs(t, store.Record(context.Background(), Entry{SessionID: "s1"}), ErrInvalidEntry)
}
