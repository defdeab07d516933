package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Provider tells how an account authenticates.
type Provider string

const (
	ProviderLocal     Provider = "local"
	ProviderFederated Provider = "federated"
)

// Visibility controls whether a profile shows up in public listings.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Role is the account's privilege level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity describes where an account's credentials live.
// Issuer and ExternalID are set only for federated accounts.
type Identity struct {
	Provider   Provider `json:"provider"`
	Issuer     string   `json:"issuer,omitempty"`
	ExternalID string   `json:"-"`
}

// Profile is the user-editable part of an account.
type Profile struct {
	DisplayName string     `json:"display_name"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Visibility  Visibility `json:"visibility"`
}

// Account is the stored user record.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Identity     Identity  `json:"identity"`
	Profile      Profile   `json:"profile"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsFederated reports whether the account signs in through an identity provider.
func (a *Account) IsFederated() bool {
	return a.Identity.Provider == ProviderFederated
}

// IsAdmin reports whether the account holds the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// PublicAccount is the view of an account safe to hand to clients.
type PublicAccount struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Provider    Provider   `json:"provider"`
	Issuer      string     `json:"issuer,omitempty"`
	DisplayName string     `json:"display_name"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Visibility  Visibility `json:"visibility"`
	Role        Role       `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Public strips credentials from the account.
func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:          a.ID,
		Email:       a.Email,
		Provider:    a.Identity.Provider,
		Issuer:      a.Identity.Issuer,
		DisplayName: a.Profile.DisplayName,
		AvatarURL:   a.Profile.AvatarURL,
		Bio:         a.Profile.Bio,
		Phone:       a.Profile.Phone,
		Visibility:  a.Profile.Visibility,
		Role:        a.Role,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// PublicAccounts maps Public over a slice.
func PublicAccounts(accounts []*Account) []PublicAccount {
	out := make([]PublicAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Public())
	}
	return out
}

// AccountFilter narrows ListAccounts. Zero fields match everything.
type AccountFilter struct {
	Visibility Visibility
	Role       Role
}

// AccountStorage persists accounts. Emails passed in are already normalized.
type AccountStorage interface {
	// CreateAccount inserts a new account; returns ErrEmailAlreadyExists on a
	// duplicate email.
	CreateAccount(ctx context.Context, account *Account) error
	// GetAccountByID returns ErrAccountNotFound when no account matches.
	GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// GetAccountByEmail returns ErrAccountNotFound when no account matches.
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	// UpdateAccount replaces the stored account with the same ID.
	UpdateAccount(ctx context.Context, account *Account) error
	// ListAccounts returns accounts matching filter, oldest first.
	ListAccounts(ctx context.Context, filter AccountFilter) ([]*Account, error)
}
