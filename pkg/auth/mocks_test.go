package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAccountStorage is a mock implementation of AccountStorage.
type MockAccountStorage struct {
	mock.Mock
}

func (m *MockAccountStorage) CreateAccount(ctx context.Context, account *Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStorage) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountStorage) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountStorage) UpdateAccount(ctx context.Context, account *Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStorage) ListAccounts(ctx context.Context, filter AccountFilter) ([]*Account, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Account), args.Error(1)
}

// MockStateStore is a mock implementation of StateStore.
type MockStateStore struct {
	mock.Mock
}

func (m *MockStateStore) StoreState(ctx context.Context, state string, expiresAt time.Time) error {
	args := m.Called(ctx, state, expiresAt)
	return args.Error(0)
}

func (m *MockStateStore) ConsumeState(ctx context.Context, state string) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// MockProviderAdapter is a mock implementation of ProviderAdapter.
type MockProviderAdapter struct {
	mock.Mock
}

func (m *MockProviderAdapter) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockProviderAdapter) AuthURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockProviderAdapter) Exchange(ctx context.Context, code string) (ProviderProfile, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(ProviderProfile), args.Error(1)
}

// MockTokenIssuer is a mock implementation of TokenIssuer.
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(ctx context.Context, accountID uuid.UUID) (IssuedToken, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(IssuedToken), args.Error(1)
}

// fakeAccountStorage is a minimal concurrent-safe store with a unique email
// index, for tests that exercise real races.
type fakeAccountStorage struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*Account
	byEmail map[string]uuid.UUID
}

func newFakeAccountStorage() *fakeAccountStorage {
	return &fakeAccountStorage{
		byID:    make(map[uuid.UUID]*Account),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (f *fakeAccountStorage) CreateAccount(_ context.Context, a *Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[a.Email]; ok {
		return ErrEmailAlreadyExists
	}
	cp := *a
	f.byID[a.ID] = &cp
	f.byEmail[a.Email] = a.ID
	return nil
}

func (f *fakeAccountStorage) GetAccountByID(_ context.Context, id uuid.UUID) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountStorage) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	f.mu.Lock()
	id, ok := f.byEmail[email]
	f.mu.Unlock()
	if !ok {
		return nil, ErrAccountNotFound
	}
	return f.GetAccountByID(ctx, id)
}

func (f *fakeAccountStorage) UpdateAccount(_ context.Context, a *Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[a.ID]; !ok {
		return ErrAccountNotFound
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAccountStorage) ListAccounts(_ context.Context, _ AccountFilter) ([]*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Account, 0, len(f.byID))
	for _, a := range f.byID {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeAccountStorage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}
