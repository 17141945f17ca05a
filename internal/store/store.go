// Package store provides the session store backends for the quiz
// engine: Redis by default, Firestore as an alternative. Every backend
// failure is wrapped so the caller can match quiz.ErrStoreUnavailable.
package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/redis/go-redis/v9"

	"github.com/redkrayn/Chat-bots-lesson-4/internal/config"
	"github.com/redkrayn/Chat-bots-lesson-4/internal/quiz"
)

// Open builds the session store selected by the configuration and
// returns it together with a close function for the underlying client.
func Open(ctx context.Context, cfg config.Config) (quiz.SessionStore, func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisStore(client), client.Close, nil
	case config.BackendFirestore:
		client, err := firestore.NewClient(ctx, cfg.FirestoreProject)
		if err != nil {
			return nil, nil, fmt.Errorf("create firestore client: %w", err)
		}
		return NewFirestoreStore(client), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(quiz.ErrStoreUnavailable, err))
}
