package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords with bcrypt. Both operations
// run on a separate goroutine so a cancelled request stops waiting for them.
type PasswordHasher struct {
	cost    int
	timeout time.Duration
}

// HasherConfig holds password hashing settings.
type HasherConfig struct {
	Cost    int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	Timeout time.Duration `env:"AUTH_HASH_TIMEOUT" envDefault:"5s"`
}

// HasherOption configures a PasswordHasher.
type HasherOption func(*PasswordHasher)

// WithBcryptCost sets the bcrypt work factor. Out-of-range values are ignored.
func WithBcryptCost(cost int) HasherOption {
	return func(h *PasswordHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// WithHashTimeout bounds a single hash or verify call. Zero disables the bound.
func WithHashTimeout(d time.Duration) HasherOption {
	return func(h *PasswordHasher) { h.timeout = d }
}

// NewPasswordHasher returns a hasher using bcrypt.DefaultCost.
func NewPasswordHasher(opts ...HasherOption) *PasswordHasher {
	h := &PasswordHasher{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type hashResult struct {
	hash []byte
	err  error
}

// Hash returns the bcrypt digest of plaintext.
func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("password hashing aborted: %w", err)
	}

	ctx, cancel := h.bound(ctx)
	defer cancel()

	done := make(chan hashResult, 1)
	go func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
		done <- hashResult{hash: hash, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("password hashing aborted: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("failed to hash password: %w", res.err)
		}
		return string(res.hash), nil
	}
}

// Verify reports whether plaintext matches digest. A malformed or empty
// digest never matches. The only error is context expiry.
func (h *PasswordHasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("password verification aborted: %w", err)
	}
	if digest == "" {
		return false, nil
	}

	ctx, cancel := h.bound(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	}()

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("password verification aborted: %w", ctx.Err())
	case err := <-done:
		// Mismatch and malformed digest both land here.
		return err == nil, nil
	}
}

func (h *PasswordHasher) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(ctx, h.timeout)
	}
	return context.WithCancel(ctx)
}
