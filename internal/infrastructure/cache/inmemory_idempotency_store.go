package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
)

type entry struct {
	expiresAt time.Time
}

// InMemoryIdempotencyStore implements IdempotencyStore with a local map.
// Suitable for single-instance deployments and development; it does not share
// state across processes, so a distributed deployment must use Redis.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

// NewInMemoryIdempotencyStore creates an in-memory idempotency store and
// starts a background goroutine that evicts expired entries.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}
	store.wg.Add(1)
	go store.cleanupLoop()
	return store
}

// MarkProcessed marks an event as processed with a TTL.
// Returns true if the event was newly marked, false if it was already processed.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[eventID]; exists && time.Now().Before(e.expiresAt) {
		return false, nil
	}
	s.entries[eventID] = entry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// IsProcessed checks if an event has already been processed
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[eventID]
	if !exists || time.Now().After(e.expiresAt) {
		return false, nil
	}
	return true, nil
}

// Release forgets an event so its redelivery is processed again
func (s *InMemoryIdempotencyStore) Release(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, eventID)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for eventID, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, eventID)
		}
	}
}
