package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces revocation keys.
const DefaultKeyPrefix = "revoked_token:"

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// WithRedisClock overrides the time source used to compute key TTLs.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisStore) {
		if now != nil {
			s.now = now
		}
	}
}

// RedisStore shares the revocation set between service replicas. Each entry
// is a key whose TTL equals the remaining lifetime of the token.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Store backed by client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: DefaultKeyPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Revoke stores the token key with a TTL ending at expiresAt.
func (s *RedisStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if token == "" {
		return ErrEmptyToken
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		// already expired, verification rejects it without an entry
		return nil
	}
	// round up so the key never disappears before the token expires
	ttl = ttl.Truncate(time.Second) + time.Second

	if err := s.client.Set(ctx, s.key(token), s.now().Unix(), ttl).Err(); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}

// IsRevoked reports whether a key exists for token.
func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, ErrEmptyToken
	}
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, errors.Join(ErrStoreFailed, err)
	}
	return n > 0, nil
}

func (s *RedisStore) key(token string) string {
	return s.prefix + Fingerprint(token)
}
