package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-api/internal/api/metrics"
	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

// HeaderAPIKey carries API keys.
const HeaderAPIKey = "x-api-key"

// AuthMode selects which credentials a route accepts.
type AuthMode int

const (
	// BearerOnly accepts only "Authorization: Bearer <token>".
	BearerOnly AuthMode = iota
	// BearerOrAPIKey prefers a bearer token and falls back to x-api-key.
	BearerOrAPIKey
)

// Authenticate resolves the request credentials into a principal and
// attaches it to the request context. Resolution errors are returned as-is
// for the HTTP error handler to map.
func Authenticate(resolver ports.IdentityResolver, mode AuthMode) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			authorization := req.Header.Get(echo.HeaderAuthorization)

			var (
				p   *domain.Principal
				err error
			)
			switch mode {
			case BearerOrAPIKey:
				p, err = resolver.Resolve(req.Context(), ports.Credentials{
					Authorization: authorization,
					APIKey:        req.Header.Get(HeaderAPIKey),
				})
			default:
				p, err = resolver.ResolveBearer(req.Context(), authorization)
			}

			if err != nil {
				metrics.AuthResolutionsTotal.WithLabelValues(attemptedMethod(err), resolutionResult(err)).Inc()
				return err
			}

			metrics.AuthResolutionsTotal.WithLabelValues(string(p.Method), "ok").Inc()
			SetPrincipal(c, p)
			return next(c)
		}
	}
}

func attemptedMethod(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthenticationRequired):
		return "none"
	case errors.Is(err, domain.ErrMissingAPIKey), errors.Is(err, domain.ErrInvalidAPIKey),
		errors.Is(err, domain.ErrNoRole):
		return string(domain.AuthMethodAPIKey)
	default:
		return string(domain.AuthMethodBearer)
	}
}

func resolutionResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingToken), errors.Is(err, domain.ErrMissingAPIKey),
		errors.Is(err, domain.ErrAuthenticationRequired):
		return "missing"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, domain.ErrStaleToken):
		return "stale_token"
	case errors.Is(err, domain.ErrInvalidAPIKey):
		return "invalid_api_key"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrNoRole):
		return "no_role"
	default:
		return "error"
	}
}
