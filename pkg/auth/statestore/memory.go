package statestore

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

// MemoryStore is an in-process auth.StateStore for tests and development.
// A background janitor evicts expired states; call Close when done.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	done   chan struct{}
	once   sync.Once
}

// NewMemoryStore creates a memory store and starts its cleanup janitor.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		states: make(map[string]time.Time),
		done:   make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Store saves a state with the given TTL.
func (s *MemoryStore) Store(_ context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = time.Now().Add(ttl)
	return nil
}

// Consume removes the state, failing with auth.ErrStateNotFound when it is
// unknown or expired. A state can be consumed at most once.
func (s *MemoryStore) Consume(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.states[state]
	if !ok {
		return auth.ErrStateNotFound
	}
	delete(s.states, state)

	if time.Now().After(expiresAt) {
		return auth.ErrStateNotFound
	}
	return nil
}

// Close stops the cleanup janitor.
func (s *MemoryStore) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for state, expiresAt := range s.states {
				if now.After(expiresAt) {
					delete(s.states, state)
				}
			}
			s.mu.Unlock()
		}
	}
}

var _ auth.StateStore = (*MemoryStore)(nil)
