package startmark

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func exerciseMarks(t *testing.T, first, second Marks) {
	t.Helper()
	ctx := context.Background()

	has, err := first.Has(ctx, "quiz-1")
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, first.Set(ctx, "quiz-1"))
	has, err = first.Has(ctx, "quiz-1")
	require.NoError(t, err)
	require.True(t, has)

	has, err = first.Has(ctx, "quiz-2")
	require.NoError(t, err)
	require.False(t, has, "marks are per quiz")

	if second != nil {
		has, err = second.Has(ctx, "quiz-1")
		require.NoError(t, err)
		require.False(t, has, "marks are per player instance")
	}

	require.NoError(t, first.Clear(ctx, "quiz-1"))
	has, err = first.Has(ctx, "quiz-1")
	require.NoError(t, err)
	require.False(t, has)
}

func TestMemoryMarks(t *testing.T) {
	exerciseMarks(t, NewMemoryMarks(), NewMemoryMarks())
}

func newRedisMarks(t *testing.T, addr string, ttl time.Duration) *RedisMarks {
	t.Helper()
	marks, err := NewRedisMarks(context.Background(), RedisConfig{Addr: addr, TTL: ttl})
	require.NoError(t, err)
	t.Cleanup(func() { _ = marks.Close() })
	return marks
}

func TestRedisMarks(t *testing.T) {
	server := miniredis.RunT(t)

	first := newRedisMarks(t, server.Addr(), time.Minute)
	second := newRedisMarks(t, server.Addr(), time.Minute)
	exerciseMarks(t, first, second)
}

func TestRedisMarksExpire(t *testing.T) {
	server := miniredis.RunT(t)
	marks := newRedisMarks(t, server.Addr(), 30*time.Second)
	ctx := context.Background()

	require.NoError(t, marks.Set(ctx, "quiz-1"))
	require.Equal(t, 30*time.Second, server.TTL(marks.key("quiz-1")))

	server.FastForward(31 * time.Second)
	has, err := marks.Has(ctx, "quiz-1")
	require.NoError(t, err)
	require.False(t, has, "an expired mark no longer admits play")
}

func TestRedisMarksDefaultTTL(t *testing.T) {
	server := miniredis.RunT(t)
	marks := newRedisMarks(t, server.Addr(), 0)

	require.NoError(t, marks.Set(context.Background(), "quiz-1"))
	require.Equal(t, DefaultTTL, server.TTL(marks.key("quiz-1")))
}

func TestNewRedisMarksFailsWhenUnreachable(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	_, err := NewRedisMarks(context.Background(), RedisConfig{Addr: addr})
	require.Error(t, err)
}
