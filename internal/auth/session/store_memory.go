package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"greensquirrel/pkg/platform/sentinel"
)

// InMemoryStore keeps pending sessions in a mutex-guarded map. One lock
// around lookup-and-delete gives Consume its at-most-once guarantee. This is
// process-local state: constructed at startup, injected where needed, gone on
// restart.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*PendingSession
}

// NewInMemoryStore constructs an empty pairing session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*PendingSession)}
}

func (s *InMemoryStore) Create(_ context.Context, pending *PendingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *pending
	s.sessions[pending.Token] = &clone
	return nil
}

// Consume removes and returns the session in one critical section. Expired
// entries are rejected but left in place for DeleteExpired to reclaim.
func (s *InMemoryStore) Consume(_ context.Context, token string, now time.Time) (*PendingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.sessions[token]
	if !ok {
		return nil, fmt.Errorf("pairing session: %w", sentinel.ErrNotFound)
	}
	if pending.ExpiresAt.Before(now) {
		return nil, fmt.Errorf("pairing session: %w", sentinel.ErrExpired)
	}

	delete(s.sessions, token)
	clone := *pending
	return &clone, nil
}

// DeleteExpired removes all sessions past their expiry as of now. The time is
// injected for testability.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for token, pending := range s.sessions {
		if pending.ExpiresAt.Before(now) {
			delete(s.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

// Len reports the number of stored sessions, expired ones included.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

var _ Store = (*InMemoryStore)(nil)
