package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the OutcomeStore interface
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "cookiecheck:outcome:",
	}
}

var _ ports.OutcomeStore = (*RedisStore)(nil)

// Put stores an outcome in Redis with expiration
func (s *RedisStore) Put(ctx context.Context, key string, outcome core.Outcome, ttl time.Duration) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store outcome: %w", err)
	}

	return nil
}

// Get loads an outcome from Redis
func (s *RedisStore) Get(ctx context.Context, key string) (core.Outcome, bool, error) {
	payload, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.Outcome{}, false, nil
	}
	if err != nil {
		return core.Outcome{}, false, fmt.Errorf("failed to load outcome: %w", err)
	}

	var outcome core.Outcome
	if err := json.Unmarshal(payload, &outcome); err != nil {
		return core.Outcome{}, false, fmt.Errorf("failed to decode outcome: %w", err)
	}

	return outcome, true, nil
}
