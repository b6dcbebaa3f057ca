package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

// dummySecret is hashed once and compared against on unknown emails so a
// failed login costs the same whether or not the account exists.
const dummySecret = "storefront-timing-equalizer"

// AuthService implements registration, login and password change.
type AuthService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	hasher   ports.SecretHasher
	tokens   ports.TokenCodec
	throttle ports.LoginThrottle
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.SecretHasher,
	tokens ports.TokenCodec,
	throttle ports.LoginThrottle,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		roles:    roles,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		log:      log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with the default role and token version 1.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if in.Name == "" || email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	role, err := s.roles.FindByName(ctx, domain.DefaultRole)
	if err != nil {
		return nil, fmt.Errorf("register: default role %s: %w", domain.DefaultRole, err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
		TokenVersion: domain.InitialTokenVersion,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

// Login enforces the per-email cooldown, verifies the password and issues a
// token. Unknown emails and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	allowed, retryAfter, err := s.throttle.Acquire(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: throttle: %w", err)
	}
	if !allowed {
		return nil, &domain.RateLimitError{RetryAfter: retryAfter}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.hasher.Verify(password, s.dummy())
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: lookup user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	role, err := loadRole(ctx, s.roles, user, s.log)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !role.Allows(domain.CapPostLogin) {
		return nil, domain.ErrLoginNotPermitted
	}

	ttl := s.tokens.DefaultTTL()
	token, _, err := s.tokens.Sign(domain.TokenClaims{
		Subject:      user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
	}, ttl)
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}

	return &ports.LoginResult{
		Token:     token,
		ExpiresIn: int(ttl.Seconds()),
		User:      user,
	}, nil
}

// ChangePassword verifies the old password, stores the new hash and bumps
// the token version, which invalidates every previously issued token.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}

	version := user.TokenVersion
	if version < domain.InitialTokenVersion {
		version = domain.InitialTokenVersion
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, version+1); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Int("token_version", version+1).Msg("password changed")
	return nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(dummySecret)
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare dummy hash")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// loadRole resolves the user's role. A missing role record is not an error:
// the nil role is caught later by the permission gate.
func loadRole(ctx context.Context, roles ports.RoleRepository, user *domain.User, log zerolog.Logger) (*domain.Role, error) {
	role, err := roles.FindByID(ctx, user.RoleID)
	if errors.Is(err, domain.ErrRoleNotFound) {
		log.Warn().Str("user_id", user.ID).Str("role_id", user.RoleID).Msg("role not found for user")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load role: %w", err)
	}
	return role, nil
}
