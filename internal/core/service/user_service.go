package service

import (
	"context"
	"fmt"

	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

type userService struct {
	users ports.UserRepository
	roles ports.RoleRepository
}

// NewUserService returns a UserService implementation.
func NewUserService(users ports.UserRepository, roles ports.RoleRepository) ports.UserService {
	return &userService{users: users, roles: roles}
}

// Me returns the authenticated user's record with the role already resolved
// on the principal.
func (s *userService) Me(ctx context.Context, p *domain.Principal) (*domain.UserWithRole, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &domain.UserWithRole{User: *user, Role: p.Role}, nil
}

// List returns every user joined with its role.
func (s *userService) List(ctx context.Context) ([]*domain.UserWithRole, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	byID := make(map[string]*domain.Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}

	out := make([]*domain.UserWithRole, 0, len(users))
	for _, u := range users {
		out = append(out, &domain.UserWithRole{User: *u, Role: byID[u.RoleID]})
	}
	return out, nil
}
