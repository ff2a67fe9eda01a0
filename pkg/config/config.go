package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/moda-storefront/pkg/enums"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "MODA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv           = "MODA_APP_ENV"
	EnvLogLevel         = "MODA_LOG_LEVEL"
	EnvLogFormat        = "MODA_LOG_FORMAT"
	EnvStorageDriver    = "MODA_STORAGE_DRIVER"
	EnvStorageNamespace = "MODA_STORAGE_NAMESPACE"
	EnvDBDSN            = "MODA_DB_DSN"
	EnvRedisURL         = "MODA_REDIS_URL"
	EnvRedisAddr        = "MODA_REDIS_ADDR"
	EnvProductsSource   = "MODA_CATALOG_PRODUCTS_SOURCE"
	EnvCouponsSource    = "MODA_CATALOG_COUPONS_SOURCE"
	EnvCheckoutDelay    = "MODA_CHECKOUT_DELAY"
	EnvCheckoutCurrency = "MODA_CHECKOUT_CURRENCY"
)

type Config struct {
	App      AppConfig
	Storage  StorageConfig
	DB       DBConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
	Checkout CheckoutConfig
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

type AppConfig struct {
	Env          string `envconfig:"MODA_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"MODA_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"MODA_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"MODA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StorageConfig struct {
	Driver    string `envconfig:"MODA_STORAGE_DRIVER" default:"sqlite"`
	Namespace string `envconfig:"MODA_STORAGE_NAMESPACE" default:"moda"`
}

// DriverKind returns the parsed storage driver.
func (s StorageConfig) DriverKind() (enums.StorageDriver, error) {
	return enums.ParseStorageDriver(strings.ToLower(strings.TrimSpace(s.Driver)))
}

type DBConfig struct {
	DSN string `envconfig:"MODA_DB_DSN" default:"file:moda.db"`

	MaxOpenConns    int           `envconfig:"MODA_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"MODA_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"MODA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MODA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MODA_REDIS_URL"`
	Address      string        `envconfig:"MODA_REDIS_ADDR"`
	Password     string        `envconfig:"MODA_REDIS_PASSWORD"`
	DB           int           `envconfig:"MODA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MODA_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"MODA_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"MODA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MODA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MODA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CatalogConfig points at the external product and coupon definitions. An
// empty source means the data is unavailable and the built-in lists are used.
type CatalogConfig struct {
	ProductsSource string        `envconfig:"MODA_CATALOG_PRODUCTS_SOURCE"`
	CouponsSource  string        `envconfig:"MODA_CATALOG_COUPONS_SOURCE"`
	FetchTimeout   time.Duration `envconfig:"MODA_CATALOG_FETCH_TIMEOUT" default:"5s"`
}

type CheckoutConfig struct {
	Delay    time.Duration `envconfig:"MODA_CHECKOUT_DELAY" default:"600ms"`
	Locale   string        `envconfig:"MODA_CHECKOUT_LOCALE" default:"es-UY"`
	Currency string        `envconfig:"MODA_CHECKOUT_CURRENCY" default:"UYU"`
}

func (c *Config) validate() error {
	driver, err := c.Storage.DriverKind()
	if err != nil {
		return err
	}
	if driver == enums.StorageDriverRedis && c.Redis.URL == "" && c.Redis.Address == "" {
		return fmt.Errorf("either %s or %s is required for the redis driver", EnvRedisURL, EnvRedisAddr)
	}
	if (driver == enums.StorageDriverSQLite || driver == enums.StorageDriverPostgres) && c.DB.DSN == "" {
		return fmt.Errorf("%s is required for the %s driver", EnvDBDSN, driver)
	}
	switch strings.ToLower(strings.TrimSpace(c.App.LogFormat)) {
	case "", "json", "console":
	default:
		return fmt.Errorf("%s must be json or console", EnvLogFormat)
	}
	if _, err := enums.ParseCurrency(strings.ToUpper(strings.TrimSpace(c.Checkout.Currency))); err != nil {
		return fmt.Errorf("%s: %w", EnvCheckoutCurrency, err)
	}
	if c.Checkout.Delay < 0 {
		return fmt.Errorf("%s must not be negative", EnvCheckoutDelay)
	}
	return nil
}
