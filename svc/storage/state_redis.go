package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/accountkit/pkg/auth"
)

// RedisStateStore keeps OAuth state values in Redis with a TTL, so any
// instance behind a load balancer can complete the callback.
type RedisStateStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ auth.StateStore = (*RedisStateStore)(nil)

// RedisStateOption configures a RedisStateStore.
type RedisStateOption func(*RedisStateStore)

// WithStatePrefix sets the key prefix. Default "oauth_state:".
func WithStatePrefix(prefix string) RedisStateOption {
	return func(s *RedisStateStore) { s.prefix = prefix }
}

func NewRedisStateStore(client redis.UniversalClient, opts ...RedisStateOption) *RedisStateStore {
	s := &RedisStateStore{
		client: client,
		prefix: "oauth_state:",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStateStore) StoreState(ctx context.Context, state string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("state already expired")
	}
	if err := s.client.Set(ctx, s.prefix+state, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store oauth state: %w", err)
	}
	return nil
}

// ConsumeState deletes the key with GETDEL so two callbacks racing on the
// same state cannot both succeed.
func (s *RedisStateStore) ConsumeState(ctx context.Context, state string) error {
	err := s.client.GetDel(ctx, s.prefix+state).Err()
	if errors.Is(err, redis.Nil) {
		return auth.ErrStateNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return nil
}
