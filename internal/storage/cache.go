package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/pointwallet/backend/internal/models"
)

const balanceCacheTTL = 5 * time.Minute

// BalanceCache is a read-through Redis cache for balance snapshots. Only
// the query path consults it; the mutation path always reads the
// authoritative store and invalidates the cached entry afterwards.
type BalanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewBalanceCache(rdb *redis.Client) *BalanceCache {
	return &BalanceCache{rdb: rdb, ttl: balanceCacheTTL}
}

func balanceKey(userID int64) string {
	return fmt.Sprintf("point:balance:%d", userID)
}

// Get returns the cached snapshot, with found=false on a miss.
func (c *BalanceCache) Get(ctx context.Context, userID int64) (models.UserPoint, bool, error) {
	data, err := c.rdb.Get(ctx, balanceKey(userID)).Bytes()
	if err == redis.Nil {
		return models.UserPoint{}, false, nil
	}
	if err != nil {
		return models.UserPoint{}, false, fmt.Errorf("%w: cache get: %v", ErrTransientStorage, err)
	}

	var point models.UserPoint
	if err := json.Unmarshal(data, &point); err != nil {
		// A corrupt entry is treated as a miss.
		return models.UserPoint{}, false, nil
	}
	return point, true, nil
}

// Set stores the snapshot with the cache TTL.
func (c *BalanceCache) Set(ctx context.Context, point models.UserPoint) error {
	data, err := json.Marshal(point)
	if err != nil {
		return fmt.Errorf("marshal user point: %w", err)
	}
	if err := c.rdb.Set(ctx, balanceKey(point.UserID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: cache set: %v", ErrTransientStorage, err)
	}
	return nil
}

// Invalidate drops the cached snapshot after a mutation.
func (c *BalanceCache) Invalidate(ctx context.Context, userID int64) error {
	if err := c.rdb.Del(ctx, balanceKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: cache invalidate: %v", ErrTransientStorage, err)
	}
	return nil
}
