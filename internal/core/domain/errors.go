package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Identity resolution.
var (
	ErrMissingToken           = errors.New("missing token")
	ErrInvalidToken           = errors.New("invalid token")
	ErrStaleToken             = errors.New("token expired")
	ErrMissingAPIKey          = errors.New("api key required")
	ErrInvalidAPIKey          = errors.New("invalid api key")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrUserNotFound           = errors.New("user not found")
)

// Permission gate.
var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrNoRole            = errors.New("no role assigned")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrLoginNotPermitted = errors.New("account is banned or does not have login permission")
)

// Accounts and credentials.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("email already registered")
	ErrRoleNotFound       = errors.New("role not found")
	ErrAPIKeyNotFound     = errors.New("api key not found")
	ErrNotOwner           = errors.New("resource belongs to another user")
	ErrRateLimited        = errors.New("too many login attempts")
)

// Webhooks and upstream dependencies.
var (
	ErrWebhookSignatureInvalid = errors.New("invalid webhook signature")
	ErrUpstream                = errors.New("upstream dependency failure")
)

// RateLimitError reports a throttled login together with the remaining
// cooldown. It matches ErrRateLimited under errors.Is.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry in %ds", ErrRateLimited, e.RetryAfterSeconds())
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// RetryAfterSeconds rounds the remaining cooldown up to whole seconds, never
// returning less than one.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int(math.Ceil(e.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
