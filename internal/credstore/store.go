// internal/credstore/store.go
package credstore

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned for keys that were never set, were removed, or expired.
var ErrNotFound = errors.New("credential not found")

// Store is a scoped key-value persistence with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

// ExpiresInDays converts a day count to a TTL.
func ExpiresInDays(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore keeps credentials in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	nowFunc func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		nowFunc: time.Now,
	}
}

// SetClock overrides the clock used for expiry checks.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFunc = now
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	now := s.nowFunc()
	s.mu.RUnlock()

	if !ok {
		return "", ErrNotFound
	}
	if e.expired(now) {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A Set may have landed since the read lock was released.
		e, ok = s.entries[key]
		if !ok {
			return "", ErrNotFound
		}
		if e.expired(s.nowFunc()) {
			delete(s.entries, key)
			return "", ErrNotFound
		}
	}
	return e.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = s.nowFunc().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
