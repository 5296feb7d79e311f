package redis

import (
	"context"
	"encoding/json"
	"time"

	"carbusiness-backend/internal/usecase"
)

// PremiumCache is a read-through cache for premium status lookups. Entries
// are short-lived on purpose: a redemption must become visible within the
// TTL, so keep it to a minute or less.
type PremiumCache struct {
	client RedisClient
	ttl    time.Duration
}

var _ usecase.StatusCache = (*PremiumCache)(nil)

func NewPremiumCache(client RedisClient, ttl time.Duration) *PremiumCache {
	if ttl <= 0 || ttl > time.Minute {
		ttl = time.Minute
	}
	return &PremiumCache{client: client, ttl: ttl}
}

func key(userID string) string { return "premium_status:" + userID }

func (c *PremiumCache) Get(ctx context.Context, userID string) (*usecase.PremiumStatus, bool) {
	raw, err := c.client.Get(ctx, key(userID))
	if err != nil {
		return nil, false
	}
	var st usecase.PremiumStatus
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, false
	}
	return &st, true
}

func (c *PremiumCache) Set(ctx context.Context, userID string, st usecase.PremiumStatus) {
	b, err := json.Marshal(st)
	if err != nil {
		return
	}
	// Cache misses are fine; a failed Set is not worth surfacing.
	_ = c.client.Set(ctx, key(userID), b, c.ttl)
}
