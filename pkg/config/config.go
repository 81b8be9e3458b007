package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Payments PaymentsConfig
	Stripe   StripeConfig
	Square   SquareConfig
	Bridge   BridgeConfig
	Webhooks WebhooksConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
	Features FeaturesConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Payments.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SERVANA_APP_ENV" required:"true"`
	Port         string `envconfig:"SERVANA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SERVANA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SERVANA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SERVANA_DB_DSN"`
	Driver string `envconfig:"SERVANA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SERVANA_DB_HOST"`
	Port     int    `envconfig:"SERVANA_DB_PORT" default:"5432"`
	User     string `envconfig:"SERVANA_DB_USER"`
	Password string `envconfig:"SERVANA_DB_PASSWORD"`
	Name     string `envconfig:"SERVANA_DB_NAME"`
	SSLMode  string `envconfig:"SERVANA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SERVANA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SERVANA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SERVANA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SERVANA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("db dsn or host/user/name settings are required")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"SERVANA_REDIS_URL"`
	Address      string        `envconfig:"SERVANA_REDIS_ADDR"`
	Password     string        `envconfig:"SERVANA_REDIS_PASSWORD"`
	DB           int           `envconfig:"SERVANA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SERVANA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SERVANA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SERVANA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SERVANA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SERVANA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"SERVANA_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"SERVANA_JWT_ISSUER" required:"true"`
}

// PaymentsConfig selects the active payment provider and shared knobs.
type PaymentsConfig struct {
	Provider        string        `envconfig:"SERVANA_PAYMENTS_PROVIDER" default:"stripe"`
	Currency        string        `envconfig:"SERVANA_PAYMENTS_CURRENCY" default:"EUR"`
	IntentTimeout   time.Duration `envconfig:"SERVANA_PAYMENTS_INTENT_TIMEOUT" default:"10s"`
	CheckoutLinkFmt string        `envconfig:"SERVANA_PAYMENTS_CHECKOUT_LINK_FMT" default:"servana://checkout/order/%d"`
}

func (p PaymentsConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(p.Provider)) {
	case ProviderStripe, ProviderSquare:
		return nil
	default:
		return fmt.Errorf("payments provider must be %q or %q", ProviderStripe, ProviderSquare)
	}
}

// ProviderNormalized returns the lowercase provider name.
func (p PaymentsConfig) ProviderNormalized() string {
	return strings.ToLower(strings.TrimSpace(p.Provider))
}

type StripeConfig struct {
	APIKey        string `envconfig:"SERVANA_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"SERVANA_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"SERVANA_STRIPE_ENV" default:"test"`
}

// Environment reports the configured Stripe environment.
func (s StripeConfig) Environment() string {
	return s.Env
}

type SquareConfig struct {
	AccessToken   string `envconfig:"SERVANA_SQUARE_ACCESS_TOKEN"`
	LocationID    string `envconfig:"SERVANA_SQUARE_LOCATION_ID"`
	WebhookSecret string `envconfig:"SERVANA_SQUARE_WEBHOOK_SECRET"`
	Env           string `envconfig:"SERVANA_SQUARE_ENV" default:"sandbox"`
}

// Environment reports the configured Square environment.
func (s SquareConfig) Environment() string {
	return s.Env
}

type BridgeConfig struct {
	PartnersFile   string  `envconfig:"SERVANA_BRIDGE_PARTNERS_FILE" default:"configs/partners_bridge.json"`
	CommissionRate float64 `envconfig:"SERVANA_BRIDGE_COMMISSION_RATE" default:"0.10"`
}

type WebhooksConfig struct {
	IdempotencyTTL time.Duration `envconfig:"SERVANA_WEBHOOKS_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"SERVANA_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic string `envconfig:"SERVANA_PUBSUB_DOMAIN_TOPIC" default:"servana-domain-events"`
}

type FeaturesConfig struct {
	AutoMigrate bool `envconfig:"SERVANA_AUTO_MIGRATE" default:"false"`
}
