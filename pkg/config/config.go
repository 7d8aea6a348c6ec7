package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	Store    StoreConfig
	Upstream UpstreamConfig
	JWT      JWTConfig
	Events   EventsConfig
	Checkout CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CHOWPACK_APP_ENV" required:"true"`
	Port         string `envconfig:"CHOWPACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CHOWPACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CHOWPACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"CHOWPACK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CHOWPACK_REDIS_ADDR"`
	Password     string        `envconfig:"CHOWPACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"CHOWPACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CHOWPACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CHOWPACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CHOWPACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CHOWPACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CHOWPACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// StoreConfig selects the durable cart store backend. Redis is the default;
// the sqlite backend keeps cart state on local disk for single-node deploys.
type StoreConfig struct {
	UseSQLite bool   `envconfig:"CHOWPACK_STORE_USE_SQLITE" default:"false"`
	SQLiteDSN string `envconfig:"CHOWPACK_STORE_SQLITE_DSN" default:"chowpack.db"`
}

// UpstreamConfig points at the core food-ordering REST API this engine fronts.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"CHOWPACK_UPSTREAM_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"CHOWPACK_UPSTREAM_TIMEOUT" default:"15s"`
}

type JWTConfig struct {
	Secret string `envconfig:"CHOWPACK_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"CHOWPACK_JWT_ISSUER" required:"true"`
}

// EventsConfig names the realtime feed channel mirrored from the socket server.
type EventsConfig struct {
	Channel string `envconfig:"CHOWPACK_EVENTS_CHANNEL" default:"chowpack:events"`
}

type CheckoutConfig struct {
	CartTTL time.Duration `envconfig:"CHOWPACK_CART_TTL" default:"168h"`
}
