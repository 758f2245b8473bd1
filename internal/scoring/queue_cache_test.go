package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverline/collections-platform/internal/borrowers"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestQueueCacheRoundTrip(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewQueueCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	entries := BuildQueue([]*borrowers.Borrower{
		{ID: "a", Phone: "9876501234", NextDueDate: dueDaysAgo(45), RiskLevel: borrowers.RiskHigh},
	}, scoreNow)
	require.NoError(t, cache.Put(ctx, entries))

	got, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Borrower.ID)
	assert.Equal(t, entries[0].PriorityScore, got[0].PriorityScore)
}

func TestQueueCacheExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewQueueCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, []QueueEntry{}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueueCacheInvalidate(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewQueueCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, []QueueEntry{}))
	require.NoError(t, cache.Invalidate(ctx))

	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNilQueueCacheIsNoOp(t *testing.T) {
	var cache *QueueCache
	ctx := context.Background()

	assert.NoError(t, cache.Put(ctx, []QueueEntry{}))
	_, ok, err := cache.Get(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, cache.Invalidate(ctx))
}
