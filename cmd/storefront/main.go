package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-api/internal/api"
	"github.com/99minutos/storefront-api/internal/api/handler"
	"github.com/99minutos/storefront-api/internal/api/metrics"
	"github.com/99minutos/storefront-api/internal/core/ports"
	"github.com/99minutos/storefront-api/internal/core/service"
	"github.com/99minutos/storefront-api/internal/infrastructure/db/mongo"
	"github.com/99minutos/storefront-api/internal/infrastructure/db/redis"
	"github.com/99minutos/storefront-api/internal/infrastructure/memory"
	"github.com/99minutos/storefront-api/internal/infrastructure/queue"
	"github.com/99minutos/storefront-api/internal/infrastructure/rolecatalog"
	"github.com/99minutos/storefront-api/internal/infrastructure/security"
	"github.com/99minutos/storefront-api/internal/infrastructure/shopify"
	"github.com/99minutos/storefront-api/internal/pkg/config"
	"github.com/99minutos/storefront-api/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	startupTimeout  = 30 * time.Second
	drainTimeout    = 30 * time.Second
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "storefront-api",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("storefront-api stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	// --- Storage ---
	client, db, err := mongo.Connect(startCtx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer dcancel()
		_ = client.Disconnect(dctx)
	}()

	users := mongo.NewUserRepository(db)
	roles := mongo.NewRoleRepository(db)
	keys := mongo.NewAPIKeyRepository(db)
	products := mongo.NewProductRepository(db)
	sales := mongo.NewSalesRepository(db)
	if err := mongo.EnsureIndexes(startCtx, users, roles, keys, products, sales); err != nil {
		return err
	}

	catalog, err := rolecatalog.Load(cfg.RolesPath)
	if err != nil {
		return err
	}
	if err := rolecatalog.Sync(startCtx, roles, catalog, logger.Component("rolecatalog")); err != nil {
		return err
	}

	health := map[string]handler.Pinger{
		"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}

	// --- Expiring stores: login cooldown and webhook dedup ---
	var (
		throttle ports.LoginThrottle
		dedup    service.DedupChecker
	)
	switch cfg.Auth.CooldownBackend {
	case config.BackendMemory:
		cooldown := memory.NewLoginCooldown(cfg.Auth.LoginCooldown, cfg.Auth.CooldownMaxEntries)
		defer cooldown.Close()
		seen := memory.NewDedupChecker(cfg.Orders.DedupTTL, cfg.Auth.CooldownMaxEntries)
		defer seen.Close()
		throttle, dedup = cooldown, seen
		log.Warn().Msg("using in-memory cooldown and dedup stores; state is not shared across instances")
	default:
		rdb, err := redis.Connect(startCtx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		throttle = redis.NewLoginCooldown(rdb, cfg.Auth.LoginCooldown)
		dedup = redis.NewDedupChecker(rdb, cfg.Orders.DedupTTL)
		health["redis"] = redisPinger(rdb)
	}

	// --- Security primitives ---
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens, err := security.NewJWTCodec(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	if err != nil {
		return err
	}
	verifier := security.NewHMACVerifier(cfg.Webhook.Secret)
	if !verifier.Configured() {
		log.Warn().Msg("SHOPIFY_WEBHOOK_SECRET not set; every webhook will be rejected")
	}

	commerce := shopify.NewClient(shopify.Config{
		StoreDomain: cfg.Shopify.StoreDomain,
		AdminToken:  cfg.Shopify.AdminToken,
		APIVersion:  cfg.Shopify.APIVersion,
	}, nil, logger.Component("shopify"))
	if !commerce.Configured() {
		log.Warn().Msg("shopify credentials not set; products are created in mock mode")
	}

	// --- Services ---
	authService := service.NewAuthService(users, roles, hasher, tokens, throttle, logger.Component("auth"))
	identity := service.NewIdentityService(users, roles, keys, tokens, hasher, logger.Component("identity"))
	apiKeys := service.NewAPIKeyService(keys, hasher, logger.Component("apikeys"))
	userService := service.NewUserService(users, roles)
	productService := service.NewProductService(products, commerce, logger.Component("products"))
	orderService := service.NewOrderService(sales, dedup, logger.Component("orders"))

	dispatcher := queue.NewDispatcher(cfg.Orders.Workers, orderService, metrics.QueueObserver{}, logger.Component("dispatcher"))
	dispatcher.Start(context.Background())

	e := api.NewRouter(api.Deps{
		Config:   cfg.HTTP,
		Log:      logger.Component("http"),
		Expose:   !cfg.IsProduction(),
		Auth:     authService,
		Identity: identity,
		Users:    userService,
		APIKeys:  apiKeys,
		Products: productService,
		Webhooks: verifier,
		Orders:   dispatcher,
		Health:   health,
	})

	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("storefront-api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-srvErr:
		if err != nil {
			drainOrders(dispatcher, log)
			return err
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	// Workers stop only after the server can no longer accept webhooks.
	drainOrders(dispatcher, log)
	log.Info().Msg("storefront-api stopped cleanly")
	return nil
}

// drainOrders processes every order already acknowledged to the platform,
// giving up after drainTimeout.
func drainOrders(d *queue.Dispatcher, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("order queue not fully drained")
	}
}

func redisPinger(rdb *goredis.Client) handler.Pinger {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}
