package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count     int
	lastReset time.Time
	length    time.Duration
}

// MemoryStore is a process-local Store. It is not shared between instances.
type MemoryStore struct {
	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Hit implements Store.
func (s *MemoryStore) Hit(_ context.Context, key string, length time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= length {
		s.sweep(now)
		s.lastSweep = now
	}

	w, ok := s.windows[key]
	// window を過ぎたらカウントリセット
	if !ok || now.Sub(w.lastReset) >= w.length {
		w = &window{lastReset: now, length: length}
		s.windows[key] = w
	}
	w.count++

	return w.count, w.lastReset.Add(w.length), nil
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// sweep drops elapsed windows. The caller holds s.mu.
func (s *MemoryStore) sweep(now time.Time) {
	for k, w := range s.windows {
		if now.Sub(w.lastReset) >= w.length {
			delete(s.windows, k)
		}
	}
}
