package domain

import "time"

const (
	// APIKeyPrefix starts every issued key.
	APIKeyPrefix = "sk_live_"
	// APIKeyRandomLen is the length of the base64url body (32 random bytes).
	APIKeyRandomLen = 43
	// APIKeyLookupLen is how many body characters are stored in clear as the
	// lookup prefix.
	APIKeyLookupLen = 8
)

// APIKey is a long-lived credential owned by a single user. Only the bcrypt
// hash of the full key is stored.
type APIKey struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Prefix    string    `json:"-"`
	KeyHash   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// LookupPrefix returns the non-secret lookup prefix of a well-formed key and
// false for anything that does not match the sk_live_ format.
func LookupPrefix(key string) (string, bool) {
	if len(key) != len(APIKeyPrefix)+APIKeyRandomLen || key[:len(APIKeyPrefix)] != APIKeyPrefix {
		return "", false
	}
	body := key[len(APIKeyPrefix):]
	for i := 0; i < len(body); i++ {
		c := body[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
			return "", false
		}
	}
	return body[:APIKeyLookupLen], true
}
