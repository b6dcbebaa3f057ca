package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginCooldown enforces a minimum interval between login attempts per key.
// The first attempt claims the key with SET NX PX; later attempts read the
// remaining PTTL. Expiry is left to Redis.
type LoginCooldown struct {
	client redis.Cmdable
	window time.Duration
}

func NewLoginCooldown(client redis.Cmdable, window time.Duration) *LoginCooldown {
	return &LoginCooldown{client: client, window: window}
}

func (c *LoginCooldown) Acquire(ctx context.Context, key string) (bool, time.Duration, error) {
	k := cooldownKey(key)

	ok, err := c.client.SetNX(ctx, k, 1, c.window).Result()
	if err != nil {
		return false, 0, fmt.Errorf("cooldown set: %w", err)
	}
	if ok {
		return true, 0, nil
	}

	ttl, err := c.client.PTTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("cooldown ttl: %w", err)
	}
	// -1/-2 mean the key lost its expiry or vanished between the two calls.
	if ttl <= 0 {
		ttl = c.window
	}
	return false, ttl, nil
}
