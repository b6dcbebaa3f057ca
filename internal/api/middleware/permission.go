package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-api/internal/api/metrics"
	"github.com/99minutos/storefront-api/internal/core/domain"
)

// RequirePermission admits the request only when the authenticated
// principal's role grants capability. It must run after Authenticate.
func RequirePermission(capability domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, _ := PrincipalFrom(c)
			if err := domain.Authorize(p, capability); err != nil {
				metrics.PermissionDeniedTotal.WithLabelValues(string(capability), denialReason(err)).Inc()
				return err
			}
			return next(c)
		}
	}
}

func denialReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrNoRole):
		return "no_role"
	default:
		return "denied"
	}
}
