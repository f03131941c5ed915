package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps per-identifier request timestamps in a mutex-guarded
// map. Each check-and-record is atomic with respect to concurrent requests
// for the same identifier. Entries age out lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Check implements Store.
func (s *MemoryStore) Check(_ context.Context, identifier string, window time.Duration, max int) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	kept := s.windows[identifier][:0:len(s.windows[identifier])]
	for _, ts := range s.windows[identifier] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= max {
		s.windows[identifier] = kept
		return Result{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   kept[0].Add(window),
		}, nil
	}

	kept = append(kept, now)
	s.windows[identifier] = kept
	return Result{
		Allowed:   true,
		Remaining: max - len(kept),
		ResetAt:   kept[0].Add(window),
	}, nil
}
