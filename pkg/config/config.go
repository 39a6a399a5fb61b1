package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "NGO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverRedis    = "redis"
)

// Environment variable names, exported for tests and docs.
const (
	EnvAppEnv           = "NGO_APP_ENV"
	EnvPort             = "NGO_APP_PORT"
	EnvLogLevel         = "NGO_LOG_LEVEL"
	EnvStorageDriver    = "NGO_STORAGE_DRIVER"
	EnvStorageNamespace = "NGO_STORAGE_NAMESPACE"
	EnvDBDSN            = "NGO_DB_DSN"
	EnvSQLitePath       = "NGO_DB_SQLITE_PATH"
	EnvRedisURL         = "NGO_REDIS_URL"
	EnvGatewayDriver    = "NGO_GATEWAY_DRIVER"
	EnvGatewayDSN       = "NGO_GATEWAY_DSN"
	EnvGatewayTimeout   = "NGO_GATEWAY_TIMEOUT"
	EnvGoogleMapsKey    = "NGO_GOOGLE_MAPS_API_KEY"
	EnvDeliveryFee      = "NGO_CHECKOUT_DELIVERY_FEE"
	EnvCoupons          = "NGO_CHECKOUT_COUPONS"
	EnvRemoteTimeout    = "NGO_CHECKOUT_REMOTE_TIMEOUT"
	EnvResyncEnabled    = "NGO_RESYNC_ENABLED"
	EnvResyncInterval   = "NGO_RESYNC_INTERVAL"
	EnvResyncBatchSize  = "NGO_RESYNC_BATCH_SIZE"
	EnvAutoMigrate      = "NGO_AUTO_MIGRATE"
)

type Config struct {
	App          AppConfig
	Storage      StorageConfig
	DB           DBConfig
	Redis        RedisConfig
	Gateway      GatewayConfig
	GoogleMaps   GoogleMapsConfig
	Checkout     CheckoutConfig
	Resync       ResyncConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverMemory, StorageDriverSQLite:
	case StorageDriverPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("%s is required for the %s storage driver", EnvDBDSN, c.Storage.Driver)
		}
	case StorageDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s is required for the redis storage driver", EnvRedisURL)
		}
	default:
		return fmt.Errorf("unknown %s %q", EnvStorageDriver, c.Storage.Driver)
	}
	switch c.Gateway.Driver {
	case StorageDriverPostgres, StorageDriverSQLite:
	default:
		return fmt.Errorf("unknown %s %q", EnvGatewayDriver, c.Gateway.Driver)
	}
	if c.Checkout.DeliveryFee < 0 {
		return fmt.Errorf("%s must be non-negative", EnvDeliveryFee)
	}
	for code, pct := range c.Checkout.Coupons {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("coupon %q percent %d out of range", code, pct)
		}
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"NGO_APP_ENV" required:"true"`
	Port         string `envconfig:"NGO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"NGO_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"NGO_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"NGO_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"NGO_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects the backend of the device-local key-value store.
type StorageConfig struct {
	Driver    string `envconfig:"NGO_STORAGE_DRIVER" default:"sqlite"`
	Namespace string `envconfig:"NGO_STORAGE_NAMESPACE" default:"ngo"`
}

type DBConfig struct {
	DSN        string `envconfig:"NGO_DB_DSN"`
	SQLitePath string `envconfig:"NGO_DB_SQLITE_PATH" default:"ngo.db"`

	MaxOpenConns    int           `envconfig:"NGO_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"NGO_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"NGO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NGO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NGO_REDIS_URL"`
	Address      string        `envconfig:"NGO_REDIS_ADDR"`
	Password     string        `envconfig:"NGO_REDIS_PASSWORD"`
	DB           int           `envconfig:"NGO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NGO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NGO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NGO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NGO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NGO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// GatewayConfig points at the backend Postgres the storefront submits rows to.
// An empty DSN runs the service offline: every remote insert fails and orders
// stay queued for resync.
type GatewayConfig struct {
	Driver  string        `envconfig:"NGO_GATEWAY_DRIVER" default:"postgres"`
	DSN     string        `envconfig:"NGO_GATEWAY_DSN"`
	Timeout time.Duration `envconfig:"NGO_GATEWAY_TIMEOUT" default:"10s"`
}

func (g GatewayConfig) Enabled() bool {
	return strings.TrimSpace(g.DSN) != ""
}

type GoogleMapsConfig struct {
	APIKey string `envconfig:"NGO_GOOGLE_MAPS_API_KEY"`
	Region string `envconfig:"NGO_GOOGLE_MAPS_REGION" default:"NG"`
}

type CheckoutConfig struct {
	DeliveryFee   int64          `envconfig:"NGO_CHECKOUT_DELIVERY_FEE" default:"500"`
	Coupons       map[string]int `envconfig:"NGO_CHECKOUT_COUPONS" default:"SAVE10:10"`
	RemoteTimeout time.Duration  `envconfig:"NGO_CHECKOUT_REMOTE_TIMEOUT" default:"10s"`
}

type ResyncConfig struct {
	Enabled   bool          `envconfig:"NGO_RESYNC_ENABLED" default:"true"`
	Interval  time.Duration `envconfig:"NGO_RESYNC_INTERVAL" default:"5m"`
	BatchSize int           `envconfig:"NGO_RESYNC_BATCH_SIZE" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"NGO_AUTO_MIGRATE" default:"false"`
}
