package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SweepInterval is how often Run discards expired counters.
const SweepInterval = time.Minute

// MemoryStore keeps counters in a mutex-guarded map.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]Counter
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]Counter)}
}

// Increment implements CounterStore.
func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration, now time.Time) (Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || !now.Before(c.ResetAt) {
		c = Counter{Count: 1, ResetAt: now.Add(window)}
	} else {
		c.Count++
	}
	s.counters[key] = c
	return c, nil
}

// Sweep drops counters whose window ended at or before now and returns how many were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, c := range s.counters {
		if !now.Before(c.ResetAt) {
			delete(s.counters, k)
			n++
		}
	}
	return n
}

// Len returns the number of live counters.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

// Run sweeps every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = SweepInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.Sweep(now)
		}
	}
}
