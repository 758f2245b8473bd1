package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const queueCacheKey = "priority_queue:latest"

// QueueCache keeps the most recent ranked queue in Redis so dashboard
// polls don't re-score the whole book on every request. A nil cache is
// a no-op, which keeps local runs without Redis working.
type QueueCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewQueueCache wraps a Redis client; ttl bounds staleness.
func NewQueueCache(redisClient *redis.Client, ttl time.Duration) *QueueCache {
	if redisClient == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &QueueCache{redis: redisClient, ttl: ttl}
}

// Put stores a freshly built queue.
func (c *QueueCache) Put(ctx context.Context, entries []QueueEntry) error {
	if c == nil || c.redis == nil {
		return nil
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("scoring: failed to marshal queue: %w", err)
	}
	if err := c.redis.Set(ctx, queueCacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("scoring: failed to cache queue: %w", err)
	}
	return nil
}

// Get returns the cached queue, or (nil, false, nil) on a miss.
func (c *QueueCache) Get(ctx context.Context) ([]QueueEntry, bool, error) {
	if c == nil || c.redis == nil {
		return nil, false, nil
	}
	data, err := c.redis.Get(ctx, queueCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("scoring: failed to load cached queue: %w", err)
	}
	var entries []QueueEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("scoring: failed to decode cached queue: %w", err)
	}
	return entries, true, nil
}

// Invalidate drops the cached queue, typically after a promise or
// outcome update changes someone's score.
func (c *QueueCache) Invalidate(ctx context.Context) error {
	if c == nil || c.redis == nil {
		return nil
	}
	if err := c.redis.Del(ctx, queueCacheKey).Err(); err != nil {
		return fmt.Errorf("scoring: failed to invalidate queue cache: %w", err)
	}
	return nil
}
