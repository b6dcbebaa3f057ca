package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/storefront-api/internal/core/domain"
)

// DefaultTokenTTL is the lifetime of tokens issued at login.
const DefaultTokenTTL = time.Hour

// Claims is the JWT payload: sub, email, token_version and exp.
type Claims struct {
	Email        string `json:"email"`
	TokenVersion int    `json:"token_version"`
	jwt.RegisteredClaims
}

// JWTCodec signs and verifies HS256 tokens with a shared secret.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTCodec(secret string, ttl time.Duration) (*JWTCodec, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTCodec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (c *JWTCodec) DefaultTTL() time.Duration { return c.ttl }

// Sign issues a token for claims that expires ttl from now.
func (c *JWTCodec) Sign(claims domain.TokenClaims, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.now()
	exp := now.Add(ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:        claims.Email,
		TokenVersion: claims.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm and expiry. Every failure is reported
// as domain.ErrInvalidToken.
func (c *JWTCodec) Verify(token string) (*domain.TokenClaims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}

	return &domain.TokenClaims{
		Subject:      claims.Subject,
		Email:        claims.Email,
		TokenVersion: claims.TokenVersion,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}
