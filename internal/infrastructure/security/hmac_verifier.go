package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// HMACVerifier checks base64 HMAC-SHA256 webhook signatures over the raw
// request body.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Configured reports whether a shared secret is set.
func (v *HMACVerifier) Configured() bool { return len(v.secret) > 0 }

// Verify compares signature with the canonical base64 encoding of the
// expected MAC, byte for byte. It fails closed when no secret is configured
// or the signature is empty.
func (v *HMACVerifier) Verify(rawBody []byte, signature string) bool {
	if !v.Configured() || signature == "" {
		return false
	}
	expected := base64.StdEncoding.EncodeToString(Sign(v.secret, rawBody))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign returns the raw HMAC-SHA256 of body under secret.
func Sign(secret, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return mac.Sum(nil)
}

// SignBase64 returns the header value a sender would attach to body.
func SignBase64(secret string, body []byte) string {
	return base64.StdEncoding.EncodeToString(Sign([]byte(secret), body))
}
