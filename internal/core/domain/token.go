package domain

import "time"

// TokenClaims is the identity assertion carried by a bearer token.
type TokenClaims struct {
	Subject      string
	Email        string
	TokenVersion int
	ExpiresAt    time.Time
}
