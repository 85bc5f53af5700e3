package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultEventKeyPrefix = "stripe:event:"

// RedisIdempotencyStore implements IdempotencyStore using Redis. Suitable for
// distributed deployments where multiple instances receive webhook deliveries
// and need to share idempotency state.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)

// NewRedisIdempotencyStore creates a store with an existing Redis client
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultEventKeyPrefix
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkProcessed marks an event as processed with a TTL.
// Returns true if the event was newly marked, false if it was already processed.
// Uses SETNX so the check and the mark are one atomic operation.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetNX(ctx, s.keyPrefix+eventID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event as processed: %w", err)
	}
	return result, nil
}

// IsProcessed checks if an event has already been processed
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if event is processed: %w", err)
	}
	return exists > 0, nil
}

// Release forgets an event so its redelivery is processed again
func (s *RedisIdempotencyStore) Release(ctx context.Context, eventID string) error {
	if err := s.client.Del(ctx, s.keyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("failed to release event: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}
