package storage_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accountkit/pkg/auth"
	"github.com/dmitrymomot/accountkit/svc/storage"
)

// testStateStore exercises the StateStore contract.
func testStateStore(t *testing.T, store auth.StateStore, now time.Time) {
	ctx := context.Background()

	require.NoError(t, store.StoreState(ctx, "s1", now.Add(time.Minute)))
	require.NoError(t, store.ConsumeState(ctx, "s1"))
	assert.ErrorIs(t, store.ConsumeState(ctx, "s1"), auth.ErrStateNotFound, "state is single use")
	assert.ErrorIs(t, store.ConsumeState(ctx, "unknown"), auth.ErrStateNotFound)

	require.NoError(t, store.StoreState(ctx, "s2", now.Add(time.Minute)))
	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.ConsumeState(ctx, "s2") == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ok.Load(), "only one concurrent consumer wins")
}

func TestMemoryStateStore(t *testing.T) {
	t.Parallel()

	now := time.Now()
	testStateStore(t, storage.NewMemoryStateStore(), now)
}

func TestMemoryStateStore_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	store := storage.NewMemoryStateStore(storage.WithStateClock(clock))

	require.NoError(t, store.StoreState(ctx, "s", now.Add(time.Minute)))

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	assert.ErrorIs(t, store.ConsumeState(ctx, "s"), auth.ErrStateNotFound)
}

func TestRedisStateStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	prefix := "test:" + uuid.NewString() + ":"
	store := storage.NewRedisStateStore(client, storage.WithStatePrefix(prefix))
	testStateStore(t, store, time.Now())

	ctx := context.Background()
	assert.Error(t, store.StoreState(ctx, "old", time.Now().Add(-time.Second)))

	require.NoError(t, store.StoreState(ctx, "ttl", time.Now().Add(time.Minute)))
	ttl, err := client.TTL(ctx, prefix+"ttl").Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 2)
}
