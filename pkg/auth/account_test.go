package auth

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_Public(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	a := &Account{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$secret",
		Identity:     Identity{Provider: ProviderFederated, Issuer: ProviderGoogle, ExternalID: "g-1"},
		Profile:      Profile{DisplayName: "Ada", Bio: "math", Visibility: VisibilityPrivate},
		Role:         RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	p := a.Public()
	assert.Equal(t, a.ID, p.ID)
	assert.Equal(t, ProviderFederated, p.Provider)
	assert.Equal(t, ProviderGoogle, p.Issuer)
	assert.Equal(t, "Ada", p.DisplayName)
	assert.Equal(t, VisibilityPrivate, p.Visibility)
	assert.Equal(t, RoleAdmin, p.Role)

	for _, v := range []any{a, p, PublicAccounts([]*Account{a})} {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "secret")
		assert.NotContains(t, string(raw), "g-1", "external id stays internal")
	}
}

func TestAccount_Predicates(t *testing.T) {
	t.Parallel()

	a := &Account{Identity: Identity{Provider: ProviderLocal}, Role: RoleUser}
	assert.False(t, a.IsFederated())
	assert.False(t, a.IsAdmin())

	a.Identity.Provider = ProviderFederated
	a.Role = RoleAdmin
	assert.True(t, a.IsFederated())
	assert.True(t, a.IsAdmin())
}

func TestVisibilityAndRoleValid(t *testing.T) {
	t.Parallel()

	assert.True(t, VisibilityPublic.Valid())
	assert.True(t, VisibilityPrivate.Valid())
	assert.False(t, Visibility("hidden").Valid())
	assert.False(t, Visibility("").Valid())

	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("root").Valid())
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, ok := AccountIDFromContext(ctx)
	assert.False(t, ok)
	assert.Empty(t, TokenFromContext(ctx))

	id := uuid.New()
	ctx = WithToken(WithAccountID(ctx, id), "tok")
	got, ok := AccountIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, "tok", TokenFromContext(ctx))

	_, ok = AccountIDFromContext(WithAccountID(context.Background(), uuid.Nil))
	assert.False(t, ok)
}
