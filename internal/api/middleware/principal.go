package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-api/internal/core/domain"
)

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*domain.Principal)
	return p, ok && p != nil
}

// SetPrincipal attaches p to the request context of c.
func SetPrincipal(c echo.Context, p *domain.Principal) {
	c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), p)))
}

// PrincipalFrom returns the principal attached by Authenticate.
func PrincipalFrom(c echo.Context) (*domain.Principal, bool) {
	return FromContext(c.Request().Context())
}
