package user

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"greensquirrel/pkg/platform/sentinel"
)

// InMemoryStore keeps user documents in a mutex-guarded map. It is the
// default when no database is configured and the backing store for unit
// tests. A secondary index keeps Google-subject lookups deterministic.
type InMemoryStore struct {
	mu         sync.RWMutex
	users      map[string]*User
	byGoogleID map[string]string

	now func() time.Time
}

// InMemoryOption configures an InMemoryStore.
type InMemoryOption func(*InMemoryStore)

// WithClock injects the clock used for CreatedAt/LastLoginAt stamps.
func WithClock(now func() time.Time) InMemoryOption {
	return func(s *InMemoryStore) { s.now = now }
}

// NewInMemoryStore constructs an empty in-memory user store.
func NewInMemoryStore(opts ...InMemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		users:      make(map[string]*User),
		byGoogleID: make(map[string]string),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (s *InMemoryStore) FindByGoogleID(_ context.Context, googleUserID string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byGoogleID[googleUserID]
	if !ok {
		return nil, fmt.Errorf("user by google id: %w", sentinel.ErrNotFound)
	}
	return cloneUser(s.users[id]), nil
}

func (s *InMemoryStore) Create(_ context.Context, u *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := cloneUser(u)
	created.ID = uuid.NewString()
	created.PartitionKey = PartitionKey
	now := s.now().UTC()
	created.CreatedAt = now
	created.LastLoginAt = now

	s.users[created.ID] = created
	s.byGoogleID[created.GoogleUserID] = created.ID
	return cloneUser(created), nil
}

func (s *InMemoryStore) Update(_ context.Context, u *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return nil, fmt.Errorf("user %s: %w", u.ID, sentinel.ErrNotFound)
	}

	updated := cloneUser(u)
	updated.LastLoginAt = s.now().UTC()
	s.users[updated.ID] = updated
	s.byGoogleID[updated.GoogleUserID] = updated.ID
	return cloneUser(updated), nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
	}
	delete(s.byGoogleID, u.GoogleUserID)
	delete(s.users, id)
	return nil
}

func cloneUser(u *User) *User {
	clone := *u
	clone.ExtensionTokens = append([]ExtensionToken(nil), u.ExtensionTokens...)
	return &clone
}

var _ Store = (*InMemoryStore)(nil)
