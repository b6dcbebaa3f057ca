package memory

import (
	"context"
	"strconv"
	"time"
)

// DedupChecker remembers processed order ids in memory.
type DedupChecker struct {
	cache *TTLCache
}

func NewDedupChecker(ttl time.Duration, maxEntries int) *DedupChecker {
	return &DedupChecker{cache: NewTTLCache(ttl, maxEntries)}
}

func (d *DedupChecker) IsDuplicate(_ context.Context, orderID int64) (bool, error) {
	return d.cache.Contains(strconv.FormatInt(orderID, 10)), nil
}

func (d *DedupChecker) Mark(_ context.Context, orderID int64) error {
	d.cache.Mark(strconv.FormatInt(orderID, 10))
	return nil
}

func (d *DedupChecker) Close() { d.cache.Close() }
