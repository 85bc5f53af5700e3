package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pharmacy/backend/internal/application/checkout"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps checkout sessions in Redis. The TTL is the payment
// window; an expired key simply reads as no session.
type RedisSessionStore struct {
	client *redis.Client
}

var _ checkout.SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a checkout session store
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Put stores the customer's session for the given window
func (s *RedisSessionStore) Put(ctx context.Context, customerID uuid.UUID, session checkout.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(customerID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store checkout session: %w", err)
	}
	return nil
}

// Get returns the customer's session if the payment window is still open
func (s *RedisSessionStore) Get(ctx context.Context, customerID uuid.UUID) (*checkout.Session, bool, error) {
	data, err := s.client.Get(ctx, sessionKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read checkout session: %w", err)
	}

	var session checkout.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, false, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &session, true, nil
}

// Delete closes the customer's payment window
func (s *RedisSessionStore) Delete(ctx context.Context, customerID uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(customerID)).Err(); err != nil {
		return fmt.Errorf("failed to delete checkout session: %w", err)
	}
	return nil
}

func sessionKey(customerID uuid.UUID) string {
	return "checkout:" + customerID.String()
}
