package session

import (
	"context"
	"sync"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/form"
)

const cleanupInterval = 5 * time.Minute

type memoryEntry struct {
	state    form.State
	lastSeen time.Time
}

// MemoryStore keeps sessions in process memory and drops idle ones.
type MemoryStore struct {
	mu          sync.Mutex
	ttl         time.Duration
	entries     map[string]*memoryEntry
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewMemoryStore creates a store whose sessions expire after ttl without use.
// A non-positive ttl keeps sessions forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		ttl:         ttl,
		entries:     make(map[string]*memoryEntry),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	if ttl > 0 {
		go s.cleanupLoop()
	}
	return s
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, entry := range s.entries {
		if s.expired(entry, now) {
			delete(s.entries, id)
		}
	}
}

func (s *MemoryStore) expired(entry *memoryEntry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(entry.lastSeen) > s.ttl
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, id string) (form.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return form.State{}, false, nil
	}
	now := s.now()
	if s.expired(entry, now) {
		delete(s.entries, id)
		return form.State{}, false, nil
	}
	entry.lastSeen = now
	return entry.state.Clone(), true, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, id string, state form.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = &memoryEntry{state: state.Clone(), lastSeen: s.now()}
	return nil
}

// Update implements Store. fn runs with the store locked.
func (s *MemoryStore) Update(_ context.Context, id string, fn func(form.State) form.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current form.State
	now := s.now()
	if entry, ok := s.entries[id]; ok && !s.expired(entry, now) {
		current = entry.state.Clone()
	}
	next := fn(current)
	s.entries[id] = &memoryEntry{state: next.Clone(), lastSeen: now}
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Close stops the cleanup loop.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
	return nil
}
