package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"propertychat/internal/config"
	"propertychat/internal/model"
)

const sessionKeyFmt = "conversation:%s"

// NewRedisClient creates a client from the Redis configuration section
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisStore keeps filters in Redis with a per-key expiry, shared by every server instance
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a Redis-backed store. ttl <= 0 stores keys without expiry.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Name identifies the backend
func (s *RedisStore) Name() string {
	return "redis"
}

// Ping checks the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Get loads the session filter; a missing key is not an error
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*model.SearchFilter, bool, error) {
	raw, err := s.rdb.Get(ctx, fmt.Sprintf(sessionKeyFmt, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load conversation state: %w", err)
	}

	var filter model.SearchFilter
	if err := json.Unmarshal(raw, &filter); err != nil {
		return nil, false, fmt.Errorf("failed to decode conversation state: %w", err)
	}
	if filter.Action == "" {
		filter.Action = model.ActionSearch
	}
	return &filter, true, nil
}

// Set stores the filter and refreshes the expiry
func (s *RedisStore) Set(ctx context.Context, sessionID string, filter *model.SearchFilter) error {
	raw, err := json.Marshal(filter)
	if err != nil {
		return fmt.Errorf("failed to encode conversation state: %w", err)
	}
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.rdb.Set(ctx, fmt.Sprintf(sessionKeyFmt, sessionID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save conversation state: %w", err)
	}
	return nil
}

// Delete forgets the session
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, fmt.Sprintf(sessionKeyFmt, sessionID)).Err()
}
