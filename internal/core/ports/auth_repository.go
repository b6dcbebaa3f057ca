package ports

import (
	"context"

	"github.com/99minutos/storefront-api/internal/core/domain"
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdatePassword replaces the hash and token version of a single user.
	UpdatePassword(ctx context.Context, id, passwordHash string, tokenVersion int) error
	List(ctx context.Context) ([]*domain.User, error)
}

// RoleRepository reads role tiers and their capability flags.
type RoleRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
	// Upsert creates or replaces the flags of the role identified by name.
	Upsert(ctx context.Context, role *domain.Role) error
	List(ctx context.Context) ([]*domain.Role, error)
}

// APIKeyRepository persists hashed API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) (*domain.APIKey, error)
	FindByID(ctx context.Context, id string) (*domain.APIKey, error)
	// FindByPrefix returns every key sharing the non-secret lookup prefix.
	FindByPrefix(ctx context.Context, prefix string) ([]*domain.APIKey, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error)
	Delete(ctx context.Context, id string) error
}
