package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Cooldown backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	Webhook   WebhookConfig
	Shopify   ShopifyConfig
	HTTP      HTTPConfig
	Orders    OrdersConfig
	RolesPath string `env:"ROLES_PATH"`

	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret          string        `env:"JWT_SECRET, required"`
	JWTTTL             time.Duration `env:"JWT_TTL,              default=1h"`
	BcryptCost         int           `env:"BCRYPT_COST,          default=12"`
	LoginCooldown      time.Duration `env:"LOGIN_COOLDOWN,       default=5s"`
	CooldownBackend    string        `env:"COOLDOWN_BACKEND,     default=redis"`
	CooldownMaxEntries int           `env:"COOLDOWN_MAX_ENTRIES, default=10000"`
}

type WebhookConfig struct {
	// Secret is optional at startup; webhook requests fail closed without it.
	Secret string `env:"SHOPIFY_WEBHOOK_SECRET"`
}

type ShopifyConfig struct {
	StoreDomain string `env:"SHOPIFY_STORE_DOMAIN"`
	AdminToken  string `env:"SHOPIFY_ADMIN_API_TOKEN"`
	APIVersion  string `env:"SHOPIFY_API_VERSION, default=2025-10"`
}

type HTTPConfig struct {
	CORSOrigin        string        `env:"CORS_ORIGIN,         default=*"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS, default=100"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW,   default=15m"`
	BodyLimit         string        `env:"BODY_LIMIT,          default=1M"`
}

type OrdersConfig struct {
	Workers  int           `env:"ORDER_WORKERS,   default=4"`
	DedupTTL time.Duration `env:"ORDER_DEDUP_TTL, default=24h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate checks values envconfig cannot express as tags.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Auth.LoginCooldown <= 0 {
		errs = append(errs, errors.New("LOGIN_COOLDOWN must be positive"))
	}
	switch c.Auth.CooldownBackend {
	case BackendRedis, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("COOLDOWN_BACKEND must be %q or %q, got %q", BackendRedis, BackendMemory, c.Auth.CooldownBackend))
	}
	if c.HTTP.RateLimitRequests <= 0 || c.HTTP.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}

// LoadFrom reads configuration through lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}
