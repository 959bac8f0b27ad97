package startmark

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 2 * time.Hour

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisMarks scopes keys to one player process so two terminals never see
// each other's marks.
type RedisMarks struct {
	client *redis.Client
	tab    string
	ttl    time.Duration
}

func NewRedisMarks(ctx context.Context, cfg RedisConfig) (*RedisMarks, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisMarks{client: client, tab: uuid.NewString(), ttl: ttl}, nil
}

func (r *RedisMarks) key(quizID string) string {
	return fmt.Sprintf("quiz-start:%s:%s", r.tab, quizID)
}

func (r *RedisMarks) Set(ctx context.Context, quizID string) error {
	return r.client.Set(ctx, r.key(quizID), time.Now().Unix(), r.ttl).Err()
}

func (r *RedisMarks) Has(ctx context.Context, quizID string) (bool, error) {
	count, err := r.client.Exists(ctx, r.key(quizID)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RedisMarks) Clear(ctx context.Context, quizID string) error {
	return r.client.Del(ctx, r.key(quizID)).Err()
}

func (r *RedisMarks) Close() error {
	return r.client.Close()
}
