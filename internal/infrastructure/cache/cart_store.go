package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cartapp "github.com/pharmacy/backend/internal/application/cart"
	"github.com/pharmacy/backend/internal/domain/cart"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cartPayloadVersion = 1

// cartPayload is the wire form of a cached cart. The version field lets a
// deploy change the layout without choking on entries written by the old one.
type cartPayload struct {
	Version int         `json:"v"`
	Items   []cart.Line `json:"items"`
}

// RedisCartStore keeps the authoritative copy of each customer's cart in
// Redis with a sliding TTL.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ cartapp.Cache = (*RedisCartStore)(nil)

// NewRedisCartStore creates a cart store with the given entry TTL
func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: ttl}
}

// Get returns the cached cart, reporting a miss for absent or stale-format entries
func (s *RedisCartStore) Get(ctx context.Context, userID uuid.UUID) (*cart.Snapshot, bool, error) {
	data, err := s.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cart: %w", err)
	}

	var payload cartPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Version != cartPayloadVersion {
		// unreadable or written by an incompatible deploy; rebuild from the shadow
		return nil, false, nil
	}
	return &cart.Snapshot{Lines: payload.Items}, true, nil
}

// Put stores the cart and resets its TTL
func (s *RedisCartStore) Put(ctx context.Context, userID uuid.UUID, snapshot *cart.Snapshot) error {
	data, err := json.Marshal(cartPayload{Version: cartPayloadVersion, Items: snapshot.Lines})
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cart: %w", err)
	}
	return nil
}

// Delete removes the cached cart
func (s *RedisCartStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

func cartKey(userID uuid.UUID) string {
	return "cart:" + userID.String()
}
