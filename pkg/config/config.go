package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SLABSTAK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Stripe       StripeConfig
	Marketplace  MarketplaceConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SLABSTAK_APP_ENV" required:"true"`
	Port         string `envconfig:"SLABSTAK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SLABSTAK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SLABSTAK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SLABSTAK_DB_DSN"`

	LegacyHost     string `envconfig:"SLABSTAK_DB_HOST"`
	LegacyPort     int    `envconfig:"SLABSTAK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SLABSTAK_DB_USER"`
	LegacyPassword string `envconfig:"SLABSTAK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SLABSTAK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SLABSTAK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SLABSTAK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SLABSTAK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SLABSTAK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SLABSTAK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SLABSTAK_REDIS_URL"`
	Address      string        `envconfig:"SLABSTAK_REDIS_ADDR"`
	Password     string        `envconfig:"SLABSTAK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SLABSTAK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SLABSTAK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SLABSTAK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SLABSTAK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SLABSTAK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SLABSTAK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SLABSTAK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SLABSTAK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SLABSTAK_JWT_EXPIRATION_MINUTES" default:"60"`
}

type StripeConfig struct {
	APIKey              string `envconfig:"SLABSTAK_STRIPE_API_KEY"`
	Secret              string `envconfig:"SLABSTAK_STRIPE_WEBHOOK_SECRET"`
	Env                 string `envconfig:"SLABSTAK_STRIPE_ENV" default:"test"`
	SubscriptionPriceID string `envconfig:"SLABSTAK_STRIPE_SUBSCRIPTION_PRICE_ID"`
	PortalReturnURL     string `envconfig:"SLABSTAK_STRIPE_PORTAL_RETURN_URL"`
	CheckoutSuccessURL  string `envconfig:"SLABSTAK_STRIPE_CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL   string `envconfig:"SLABSTAK_STRIPE_CHECKOUT_CANCEL_URL"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type MarketplaceConfig struct {
	PlatformFeePercent int    `envconfig:"SLABSTAK_PLATFORM_FEE_PERCENT" default:"10"`
	Currency           string `envconfig:"SLABSTAK_CURRENCY" default:"usd"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SLABSTAK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	if db.LegacyHost == "" {
		missing = append(missing, "SLABSTAK_DB_HOST")
	}
	if db.LegacyUser == "" {
		missing = append(missing, "SLABSTAK_DB_USER")
	}
	if db.LegacyName == "" {
		missing = append(missing, "SLABSTAK_DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("either SLABSTAK_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
