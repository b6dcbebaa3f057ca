package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultDedupTTL bounds how long a processed order id is remembered.
const DefaultDedupTTL = 24 * time.Hour

// DedupChecker provides idempotency checks for webhook orders backed by Redis.
// Key format: dedup:order:<order_id>
type DedupChecker struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client redis.Cmdable, ttl time.Duration) *DedupChecker {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &DedupChecker{client: client, ttl: ttl}
}

// IsDuplicate reports whether this order has already been processed.
func (d *DedupChecker) IsDuplicate(ctx context.Context, orderID int64) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKey(orderID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this order has been processed.
func (d *DedupChecker) Mark(ctx context.Context, orderID int64) error {
	return d.client.Set(ctx, dedupKey(orderID), "1", d.ttl).Err()
}
