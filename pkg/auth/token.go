package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/jwt"
	"github.com/dmitrymomot/accountkit/pkg/revocation"
)

// TokenConfig holds access-token settings.
type TokenConfig struct {
	Secret string        `env:"AUTH_TOKEN_SECRET,required"`
	TTL    time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`
	Issuer string        `env:"AUTH_TOKEN_ISSUER" envDefault:"accountkit"`
	Leeway time.Duration `env:"AUTH_TOKEN_LEEWAY" envDefault:"0s"`
}

// IssuedToken is a signed access token and the moment it stops being valid.
type IssuedToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenIssuer issues access tokens for an account.
type TokenIssuer interface {
	Issue(ctx context.Context, accountID uuid.UUID) (IssuedToken, error)
}

// TokenVerifier resolves an access token to the account it was issued for.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (uuid.UUID, error)
}

// TokenService issues, verifies and revokes access tokens.
type TokenService struct {
	signer  *jwt.Service
	revoked revocation.Store
	now     func() time.Time
}

var (
	_ TokenIssuer   = (*TokenService)(nil)
	_ TokenVerifier = (*TokenService)(nil)
)

// TokenOption configures a TokenService.
type TokenOption func(*tokenOptions)

type tokenOptions struct {
	now func() time.Time
}

// WithTokenClock overrides the time source used for issuing and checking tokens.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(o *tokenOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewTokenService builds a TokenService from cfg. The secret must be at least
// jwt.MinKeyLength bytes.
func NewTokenService(cfg TokenConfig, revoked revocation.Store, opts ...TokenOption) (*TokenService, error) {
	if revoked == nil {
		return nil, fmt.Errorf("%w: revocation store is required", ErrInvalidConfig)
	}

	o := tokenOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	signer, err := jwt.New([]byte(cfg.Secret),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithTTL(cfg.TTL),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithClock(o.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	return &TokenService{signer: signer, revoked: revoked, now: o.now}, nil
}

// Issue signs a new token for accountID.
func (s *TokenService) Issue(_ context.Context, accountID uuid.UUID) (IssuedToken, error) {
	if accountID == uuid.Nil {
		return IssuedToken{}, fmt.Errorf("cannot issue token: empty account id")
	}

	token, claims, err := s.signer.Generate(accountID.String())
	if err != nil {
		return IssuedToken{}, fmt.Errorf("failed to issue token: %w", err)
	}
	return IssuedToken{Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks signature, expiry and revocation and returns the subject.
// Every rejection wraps ErrUnauthorized.
func (s *TokenService) Verify(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingToken)
	}

	claims, err := s.signer.Parse(token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: malformed subject", ErrUnauthorized)
	}

	revoked, err := s.revoked.IsRevoked(ctx, token)
	if err != nil {
		// A store outage must not let a revoked token through.
		return uuid.Nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if revoked {
		return uuid.Nil, fmt.Errorf("%w: token revoked", ErrUnauthorized)
	}

	return id, nil
}

// Revoke blacklists token until it would have expired anyway, leeway
// included. The signature is not checked, so revoking garbage is harmless
// and idempotent.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingToken
	}

	expiresAt, ok := jwt.ExpiresAt(token)
	if !ok {
		expiresAt = s.now().Add(s.signer.TTL())
	}
	// Parse accepts the token until exp + leeway
	expiresAt = expiresAt.Add(s.signer.Leeway())

	if err := s.revoked.Revoke(ctx, token, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
