package ports

import (
	"context"

	"github.com/99minutos/storefront-api/internal/core/domain"
)

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string
	ExpiresIn int // seconds
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

// Credentials are the raw authentication headers of a request.
type Credentials struct {
	Authorization string
	APIKey        string
}

// IdentityResolver turns request credentials into a Principal.
type IdentityResolver interface {
	ResolveBearer(ctx context.Context, authorization string) (*domain.Principal, error)
	ResolveAPIKey(ctx context.Context, key string) (*domain.Principal, error)
	Resolve(ctx context.Context, creds Credentials) (*domain.Principal, error)
}

// CreatedAPIKey holds the one-time plaintext of a freshly issued key.
type CreatedAPIKey struct {
	Plaintext string
	Key       *domain.APIKey
}

type APIKeyService interface {
	Create(ctx context.Context, userID, name string) (*CreatedAPIKey, error)
	List(ctx context.Context, userID string) ([]*domain.APIKey, error)
	Delete(ctx context.Context, userID, keyID string) error
}

type UserService interface {
	Me(ctx context.Context, p *domain.Principal) (*domain.UserWithRole, error)
	List(ctx context.Context) ([]*domain.UserWithRole, error)
}
