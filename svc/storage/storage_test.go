package storage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accountkit/pkg/auth"
	"github.com/dmitrymomot/accountkit/svc/storage"
)

func newAccount(email string, created time.Time) *auth.Account {
	return &auth.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$04$hash",
		Identity:     auth.Identity{Provider: auth.ProviderLocal},
		Profile:      auth.Profile{DisplayName: "User", Visibility: auth.VisibilityPublic},
		Role:         auth.RoleUser,
		CreatedAt:    created.UTC().Truncate(time.Millisecond),
		UpdatedAt:    created.UTC().Truncate(time.Millisecond),
	}
}

// testAccountStorage exercises the AccountStorage contract shared by every
// implementation.
func testAccountStorage(t *testing.T, store auth.AccountStorage) {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	suffix := uuid.NewString()[:8]

	alice := newAccount("alice-"+suffix+"@example.com", base)
	bob := newAccount("bob-"+suffix+"@example.com", base.Add(time.Minute))
	bob.Profile.Visibility = auth.VisibilityPrivate
	bob.Role = auth.RoleAdmin

	t.Run("create and get", func(t *testing.T) {
		require.NoError(t, store.CreateAccount(ctx, alice))
		require.NoError(t, store.CreateAccount(ctx, bob))

		got, err := store.GetAccountByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice, got)

		got, err = store.GetAccountByEmail(ctx, bob.Email)
		require.NoError(t, err)
		assert.Equal(t, bob.ID, got.ID)
		assert.Equal(t, auth.RoleAdmin, got.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := newAccount(alice.Email, base)
		assert.ErrorIs(t, store.CreateAccount(ctx, dup), auth.ErrEmailAlreadyExists)

		_, err := store.GetAccountByID(ctx, dup.ID)
		assert.ErrorIs(t, err, auth.ErrAccountNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.GetAccountByID(ctx, uuid.New())
		assert.ErrorIs(t, err, auth.ErrAccountNotFound)
		_, err = store.GetAccountByEmail(ctx, "nobody-"+suffix+"@example.com")
		assert.ErrorIs(t, err, auth.ErrAccountNotFound)
		assert.ErrorIs(t, store.UpdateAccount(ctx, newAccount("ghost-"+suffix+"@example.com", base)), auth.ErrAccountNotFound)
	})

	t.Run("update", func(t *testing.T) {
		updated := *alice
		updated.Profile.Bio = "hello"
		updated.Email = "alice2-" + suffix + "@example.com"
		require.NoError(t, store.UpdateAccount(ctx, &updated))

		got, err := store.GetAccountByEmail(ctx, updated.Email)
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Profile.Bio)

		_, err = store.GetAccountByEmail(ctx, alice.Email)
		assert.ErrorIs(t, err, auth.ErrAccountNotFound, "old email is released")

		clash := updated
		clash.Email = bob.Email
		assert.ErrorIs(t, store.UpdateAccount(ctx, &clash), auth.ErrEmailAlreadyExists)
	})

	t.Run("list", func(t *testing.T) {
		all, err := store.ListAccounts(ctx, auth.AccountFilter{})
		require.NoError(t, err)
		ids := make([]uuid.UUID, 0, len(all))
		for _, a := range all {
			ids = append(ids, a.ID)
		}
		assert.Contains(t, ids, alice.ID)
		assert.Contains(t, ids, bob.ID)

		public, err := store.ListAccounts(ctx, auth.AccountFilter{Visibility: auth.VisibilityPublic})
		require.NoError(t, err)
		for _, a := range public {
			assert.Equal(t, auth.VisibilityPublic, a.Profile.Visibility)
			assert.NotEqual(t, bob.ID, a.ID)
		}

		admins, err := store.ListAccounts(ctx, auth.AccountFilter{Role: auth.RoleAdmin})
		require.NoError(t, err)
		for _, a := range admins {
			assert.Equal(t, auth.RoleAdmin, a.Role)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	testAccountStorage(t, storage.NewMemoryStore())
}

func TestMemoryStore_ListOrderedByCreation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemoryStore()
	base := time.Now()
	for i := 5; i > 0; i-- {
		require.NoError(t, store.CreateAccount(ctx, newAccount(uuid.NewString()+"@example.com", base.Add(time.Duration(i)*time.Second))))
	}

	all, err := store.ListAccounts(ctx, auth.AccountFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].CreatedAt.Before(all[i].CreatedAt))
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemoryStore()
	a := newAccount("copy@example.com", time.Now())
	require.NoError(t, store.CreateAccount(ctx, a))

	a.Profile.Bio = "mutated after create"
	got, err := store.GetAccountByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Profile.Bio)

	got.Profile.Bio = "mutated after get"
	again, err := store.GetAccountByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Profile.Bio)
}

func TestMemoryStore_ConcurrentCreateSameEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemoryStore()

	const n = 32
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.CreateAccount(ctx, newAccount("race@example.com", time.Now())) == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
	all, err := store.ListAccounts(ctx, auth.AccountFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
