package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/redkrayn/Chat-bots-lesson-4/internal/quiz"
)

// RedisStore keeps one key per user field: user:<id>:question, :answer,
// :score and :state. The question/answer pair is written inside a
// MULTI/EXEC pipeline and deleted with a single DEL, so a concurrent
// reader never observes one half of the pair.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) GetState(ctx context.Context, userID string) (quiz.State, error) {
	val, err := s.client.Get(ctx, userKey(userID, "state")).Result()
	if errors.Is(err, redis.Nil) {
		return quiz.StateNewQuestion, nil
	}
	if err != nil {
		return "", unavailable("get state", err)
	}
	return quiz.State(val), nil
}

func (s *RedisStore) SetState(ctx context.Context, userID string, state quiz.State) error {
	if err := s.client.Set(ctx, userKey(userID, "state"), string(state), 0).Err(); err != nil {
		return unavailable("set state", err)
	}
	return nil
}

func (s *RedisStore) GetActiveQuestion(ctx context.Context, userID string) (string, string, bool, error) {
	vals, err := s.client.MGet(ctx, userKey(userID, "question"), userKey(userID, "answer")).Result()
	if err != nil {
		return "", "", false, unavailable("get active question", err)
	}
	question, qok := vals[0].(string)
	answer, aok := vals[1].(string)
	if !qok || !aok {
		return "", "", false, nil
	}
	return question, answer, true, nil
}

func (s *RedisStore) SetActiveQuestion(ctx context.Context, userID, question, answer string) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, userKey(userID, "question"), question, 0)
	pipe.Set(ctx, userKey(userID, "answer"), answer, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return unavailable("set active question", err)
	}
	return nil
}

func (s *RedisStore) ClearActiveQuestion(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, userKey(userID, "question"), userKey(userID, "answer")).Err(); err != nil {
		return unavailable("clear active question", err)
	}
	return nil
}

func (s *RedisStore) IncrementScore(ctx context.Context, userID string) (int64, error) {
	score, err := s.client.Incr(ctx, userKey(userID, "score")).Result()
	if err != nil {
		return 0, unavailable("increment score", err)
	}
	return score, nil
}

func (s *RedisStore) GetScore(ctx context.Context, userID string) (int64, error) {
	val, err := s.client.Get(ctx, userKey(userID, "score")).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("get score", err)
	}
	score, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, unavailable("decode score", err)
	}
	return score, nil
}

func userKey(userID, field string) string {
	return fmt.Sprintf("user:%s:%s", userID, field)
}
