package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/auth"
)

// MemoryStore keeps accounts in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]auth.Account
	byEmail map[string]uuid.UUID
}

var _ auth.AccountStorage = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[uuid.UUID]auth.Account),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) CreateAccount(_ context.Context, account *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[account.Email]; ok {
		return auth.ErrEmailAlreadyExists
	}
	if _, ok := s.byID[account.ID]; ok {
		return auth.ErrEmailAlreadyExists
	}
	s.byID[account.ID] = *account
	s.byEmail[account.Email] = account.ID
	return nil
}

func (s *MemoryStore) GetAccountByID(_ context.Context, id uuid.UUID) (*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	return &a, nil
}

func (s *MemoryStore) GetAccountByEmail(_ context.Context, email string) (*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	a := s.byID[id]
	return &a, nil
}

func (s *MemoryStore) UpdateAccount(_ context.Context, account *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[account.ID]
	if !ok {
		return auth.ErrAccountNotFound
	}
	if current.Email != account.Email {
		if _, taken := s.byEmail[account.Email]; taken {
			return auth.ErrEmailAlreadyExists
		}
		delete(s.byEmail, current.Email)
		s.byEmail[account.Email] = account.ID
	}
	s.byID[account.ID] = *account
	return nil
}

func (s *MemoryStore) ListAccounts(_ context.Context, filter auth.AccountFilter) ([]*auth.Account, error) {
	s.mu.RLock()
	out := make([]*auth.Account, 0, len(s.byID))
	for _, a := range s.byID {
		if filter.Visibility != "" && a.Profile.Visibility != filter.Visibility {
			continue
		}
		if filter.Role != "" && a.Role != filter.Role {
			continue
		}
		out = append(out, &a)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *auth.Account) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out, nil
}
