package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/ports"
)

type memoryEntry struct {
	outcome   core.Outcome
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of the OutcomeStore interface
type MemoryStore struct {
	entries map[string]memoryEntry
	mu      sync.RWMutex
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

var _ ports.OutcomeStore = (*MemoryStore)(nil)

// Put stores an outcome until ttl elapses
func (s *MemoryStore) Put(ctx context.Context, key string, outcome core.Outcome, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.entries[key] = memoryEntry{outcome: outcome, expiresAt: now.Add(ttl)}

	// Expired entries are swept on write instead of per-key timers
	for k, e := range s.entries {
		if !e.expiresAt.After(now) {
			delete(s.entries, k)
		}
	}

	return nil
}

// Get returns a stored outcome if it has not expired
func (s *MemoryStore) Get(ctx context.Context, key string) (core.Outcome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[key]
	if !exists || !e.expiresAt.After(s.now()) {
		return core.Outcome{}, false, nil
	}

	return e.outcome, true, nil
}
