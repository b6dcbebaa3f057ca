package memory

import (
	"context"
	"time"
)

// LoginCooldown is the in-process login throttle used when Redis is not
// configured. State is lost on restart and not shared between replicas.
type LoginCooldown struct {
	cache *TTLCache
}

func NewLoginCooldown(window time.Duration, maxEntries int) *LoginCooldown {
	return &LoginCooldown{cache: NewTTLCache(window, maxEntries)}
}

func (c *LoginCooldown) Acquire(_ context.Context, key string) (bool, time.Duration, error) {
	ok, remaining := c.cache.Claim(key)
	return ok, remaining, nil
}

func (c *LoginCooldown) Close() { c.cache.Close() }
