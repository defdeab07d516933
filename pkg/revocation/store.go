package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	ErrEmptyToken  = errors.New("revocation: empty token")
	ErrStoreFailed = errors.New("revocation: store operation failed")
)

// Store is a set of revoked tokens.
type Store interface {
	// Revoke records token as invalid until expiresAt.
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	// IsRevoked reports whether token was revoked and the entry is still live.
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Fingerprint returns the key under which a token is stored.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
