package ports

import (
	"context"
	"time"

	"github.com/99minutos/storefront-api/internal/core/domain"
)

// SecretHasher is a slow, salted one-way hash for passwords and API keys.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// TokenCodec signs and verifies bearer tokens.
type TokenCodec interface {
	Sign(claims domain.TokenClaims, ttl time.Duration) (token string, expiresAt time.Time, err error)
	Verify(token string) (*domain.TokenClaims, error)
	DefaultTTL() time.Duration
}

// WebhookVerifier checks that a webhook body was signed by the platform.
type WebhookVerifier interface {
	Verify(rawBody []byte, signature string) bool
}

// LoginThrottle enforces a cooldown between login attempts per identifier.
// Acquire records the attempt when allowed; otherwise it reports how long
// the caller has to wait.
type LoginThrottle interface {
	Acquire(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}
