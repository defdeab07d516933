package storage

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/accountkit/pkg/auth"
)

// MemoryStateStore keeps OAuth state values in process memory. Expired
// entries are dropped on access.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	now    func() time.Time
}

var _ auth.StateStore = (*MemoryStateStore)(nil)

// MemoryStateOption configures a MemoryStateStore.
type MemoryStateOption func(*MemoryStateStore)

// WithStateClock overrides the time source.
func WithStateClock(now func() time.Time) MemoryStateOption {
	return func(s *MemoryStateStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStateStore(opts ...MemoryStateOption) *MemoryStateStore {
	s := &MemoryStateStore{
		states: make(map[string]time.Time),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStateStore) StoreState(_ context.Context, state string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, exp := range s.states {
		if !now.Before(exp) {
			delete(s.states, k)
		}
	}
	s.states[state] = expiresAt
	return nil
}

func (s *MemoryStateStore) ConsumeState(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.states[state]
	if !ok {
		return auth.ErrStateNotFound
	}
	delete(s.states, state)
	if !s.now().Before(exp) {
		return auth.ErrStateNotFound
	}
	return nil
}
