package storage

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	prescriptionapp "github.com/pharmacy/backend/internal/application/prescription"
)

// StubStorage keeps uploaded files in memory. Use this for development and
// tests until a real S3 backend is configured; it must not reach production.
type StubStorage struct {
	// BaseURL is prefixed to generated download links
	BaseURL string

	mu    sync.RWMutex
	files map[string][]byte
}

var _ prescriptionapp.FileStorage = (*StubStorage)(nil)

// NewStubStorage creates an in-memory storage stub
func NewStubStorage() *StubStorage {
	return &StubStorage{
		BaseURL: "https://storage.example.com",
		files:   make(map[string][]byte),
	}
}

// Upload reads the file into memory under the given key
func (s *StubStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = data
	return nil
}

// PresignedURL returns a fake download link for a stored key
func (s *StubStorage) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.files[key]; !ok {
		return "", errors.New("object not found")
	}
	expiresAt := time.Now().Add(expiry)
	return s.BaseURL + "/" + key + "?expires=" + expiresAt.Format(time.RFC3339), nil
}

// File returns a stored file's bytes (for tests)
func (s *StubStorage) File(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[key]
	return data, ok
}
