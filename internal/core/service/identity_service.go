package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

// IdentityService resolves bearer tokens and API keys into principals.
type IdentityService struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	keys   ports.APIKeyRepository
	tokens ports.TokenCodec
	hasher ports.SecretHasher
	log    zerolog.Logger
}

func NewIdentityService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	keys ports.APIKeyRepository,
	tokens ports.TokenCodec,
	hasher ports.SecretHasher,
	log zerolog.Logger,
) *IdentityService {
	return &IdentityService{
		users:  users,
		roles:  roles,
		keys:   keys,
		tokens: tokens,
		hasher: hasher,
		log:    log,
	}
}

// bearerToken extracts the token of a well-formed "Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Resolve picks exactly one path: a well-formed bearer header wins, then a
// non-blank API key. The paths are never combined.
func (s *IdentityService) Resolve(ctx context.Context, creds ports.Credentials) (*domain.Principal, error) {
	if _, ok := bearerToken(creds.Authorization); ok {
		return s.ResolveBearer(ctx, creds.Authorization)
	}
	if strings.TrimSpace(creds.APIKey) != "" {
		return s.ResolveAPIKey(ctx, creds.APIKey)
	}
	return nil, domain.ErrAuthenticationRequired
}

// ResolveBearer authenticates an Authorization header value.
func (s *IdentityService) ResolveBearer(ctx context.Context, authorization string) (*domain.Principal, error) {
	token, ok := bearerToken(authorization)
	if !ok {
		return nil, domain.ErrMissingToken
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve bearer: %w", err)
	}

	if claims.TokenVersion != user.TokenVersion {
		return nil, domain.ErrStaleToken
	}

	role, err := loadRole(ctx, s.roles, user, s.log)
	if err != nil {
		return nil, fmt.Errorf("resolve bearer: %w", err)
	}
	return domain.NewPrincipal(user, role, domain.AuthMethodBearer), nil
}

// ResolveAPIKey authenticates an x-api-key header value. Candidates are
// narrowed by the stored lookup prefix and each is bcrypt-verified against
// the full key. API keys carry no token version and stay valid across
// password changes until deleted. A key whose owner has no role is refused
// with ErrNoRole, since key-authenticated routes are not all gated.
func (s *IdentityService) ResolveAPIKey(ctx context.Context, key string) (*domain.Principal, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrMissingAPIKey
	}

	prefix, ok := domain.LookupPrefix(key)
	if !ok {
		return nil, domain.ErrInvalidAPIKey
	}

	candidates, err := s.keys.FindByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("resolve api key: %w", err)
	}

	var matched *domain.APIKey
	for _, c := range candidates {
		if s.hasher.Verify(key, c.KeyHash) {
			matched = c
			break
		}
	}
	if matched == nil {
		return nil, domain.ErrInvalidAPIKey
	}

	user, err := s.users.FindByID(ctx, matched.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.log.Warn().Str("api_key_id", matched.ID).Msg("api key owner no longer exists")
		return nil, domain.ErrInvalidAPIKey
	}
	if err != nil {
		return nil, fmt.Errorf("resolve api key: %w", err)
	}

	role, err := loadRole(ctx, s.roles, user, s.log)
	if err != nil {
		return nil, fmt.Errorf("resolve api key: %w", err)
	}
	if role == nil {
		return nil, domain.ErrNoRole
	}

	p := domain.NewPrincipal(user, role, domain.AuthMethodAPIKey)
	p.APIKeyID = matched.ID
	return p, nil
}
