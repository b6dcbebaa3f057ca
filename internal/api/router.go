package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"github.com/99minutos/storefront-api/internal/api/handler"
	"github.com/99minutos/storefront-api/internal/api/metrics"
	"github.com/99minutos/storefront-api/internal/api/middleware"
	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
	_ "github.com/99minutos/storefront-api/internal/docs"
	"github.com/99minutos/storefront-api/internal/pkg/config"
)

// Deps are the services and adapters the HTTP layer is built on.
type Deps struct {
	Config   config.HTTPConfig
	Log      zerolog.Logger
	Expose   bool // include error details in 500 responses
	Auth     ports.AuthService
	Identity ports.IdentityResolver
	Users    ports.UserService
	APIKeys  ports.APIKeyService
	Products ports.ProductService
	Webhooks ports.WebhookVerifier
	Orders   handler.OrderQueue
	Health   map[string]handler.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.Expose)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{d.Config.CORSOrigin},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.HeaderAPIKey},
	}))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit(d.Config.BodyLimit))
	e.Use(rateLimiter(d.Config))
	e.Use(metrics.Middleware())

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(d.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", metrics.Handler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users)
	keyHandler := handler.NewAPIKeyHandler(d.APIKeys)
	productHandler := handler.NewProductHandler(d.Products)
	webhookHandler := handler.NewWebhookHandler(d.Webhooks, d.Orders, d.Log.With().Str("component", "webhook").Logger())

	bearer := middleware.Authenticate(d.Identity, middleware.BearerOnly)
	combined := middleware.Authenticate(d.Identity, middleware.BearerOrAPIKey)
	can := middleware.RequirePermission

	// --- Accounts ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.GET("/my-user", userHandler.Me, bearer, can(domain.CapGetMyUser))
	e.PATCH("/my-user/password", authHandler.ChangePassword, bearer, can(domain.CapPostLogin))
	e.GET("/users", userHandler.List, bearer, can(domain.CapGetUsers))

	// --- API keys (bearer only: a key cannot mint or revoke keys) ---
	keys := e.Group("/api-keys", bearer)
	keys.POST("", keyHandler.Create)
	keys.GET("", keyHandler.List)
	keys.DELETE("/:id", keyHandler.Delete)

	// --- Products ---
	e.POST("/products", productHandler.Create, combined, can(domain.CapPostProducts))
	e.GET("/products", productHandler.ListAll, combined)
	e.GET("/my-products", productHandler.ListMine, combined)
	e.GET("/my-bestsellers", productHandler.Bestsellers, combined, can(domain.CapGetBestsellers))
	e.POST("/products/:id/add-sale", productHandler.AddSale, combined, can(domain.CapGetBestsellers))

	// --- Webhooks (HMAC signed, no user credentials) ---
	e.POST("/webhooks/shopify-sales", webhookHandler.ShopifySales)

	return e
}

// rateLimiter applies a per-IP token bucket refilling cfg.RateLimitRequests
// tokens per cfg.RateLimitWindow.
func rateLimiter(cfg config.HTTPConfig) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.RateLimitRequests) / cfg.RateLimitWindow.Seconds()),
		Burst:     cfg.RateLimitRequests,
		ExpiresIn: cfg.RateLimitWindow,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/health/ready" || c.Path() == "/metrics"
		},
		Store: store,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests from this IP, please try again later")
		},
	})
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
