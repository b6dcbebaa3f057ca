package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after,omitempty"`
	Details    string `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors and hides their cause unless exposeDetails is set.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger, exposeDetails bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c, exposeDetails)
		if resp.RetryAfter > 0 {
			c.Response().Header().Set("Retry-After", strconv.Itoa(resp.RetryAfter))
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context, exposeDetails bool) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, rate limiter, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var rl *domain.RateLimitError
	if errors.As(err, &rl) {
		return http.StatusTooManyRequests, errorResponse{
			Error:      "too many login attempts, please wait before trying again",
			RetryAfter: rl.RetryAfterSeconds(),
		}
	}

	if code, ok := statusFor(err); ok {
		return code, errorResponse{Error: publicMessage(err)}
	}

	// Store and platform failures: the cause may carry upstream response
	// bodies, so it is logged but never returned.
	if errors.Is(err, domain.ErrUpstream) {
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("upstream dependency failure")
		return http.StatusInternalServerError, errorResponse{Error: domain.ErrUpstream.Error()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	resp := errorResponse{Error: "internal server error"}
	if exposeDetails {
		resp.Details = err.Error()
	}
	return http.StatusInternalServerError, resp
}

var errorStatus = []struct {
	err  error
	code int
}{
	{domain.ErrMissingToken, http.StatusUnauthorized},
	{domain.ErrMissingAPIKey, http.StatusUnauthorized},
	{domain.ErrAuthenticationRequired, http.StatusUnauthorized},
	{domain.ErrInvalidToken, http.StatusUnauthorized},
	{domain.ErrStaleToken, http.StatusUnauthorized},
	{domain.ErrInvalidAPIKey, http.StatusUnauthorized},
	{domain.ErrUserNotFound, http.StatusUnauthorized},
	{domain.ErrUnauthenticated, http.StatusUnauthorized},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrWebhookSignatureInvalid, http.StatusUnauthorized},
	{domain.ErrNoRole, http.StatusForbidden},
	{domain.ErrPermissionDenied, http.StatusForbidden},
	{domain.ErrLoginNotPermitted, http.StatusForbidden},
	{domain.ErrNotOwner, http.StatusForbidden},
	{domain.ErrAPIKeyNotFound, http.StatusNotFound},
	{domain.ErrProductNotFound, http.StatusNotFound},
	{domain.ErrUserExists, http.StatusConflict},
}

func statusFor(err error) (int, bool) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.code, true
		}
	}
	return 0, false
}

// publicMessage strips any wrapping context so internal details such as
// upstream response bodies never reach the client.
func publicMessage(err error) string {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.err.Error()
		}
	}
	return err.Error()
}
