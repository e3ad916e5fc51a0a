package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/angelmondragon/braintree-broker/pkg/logger"
)

type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Braintree BraintreeConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes values envconfig cannot check on its own.
func (c *Config) Validate() error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.HTTP.validate(); err != nil {
		return err
	}

	env := c.Braintree.Environment()
	if env != BraintreeEnvSandbox && env != BraintreeEnvProduction {
		return fmt.Errorf("%s must be %q or %q, got %q", EnvBraintreeEnvironment, BraintreeEnvSandbox, BraintreeEnvProduction, c.Braintree.Env)
	}
	c.Braintree.Env = env
	c.Braintree.PlanID = strings.TrimSpace(c.Braintree.PlanID)
	if c.Braintree.PlanID == "" {
		return fmt.Errorf("%s must not be blank", EnvBraintreePlanID)
	}
	return nil
}

// SandboxInProduction reports a production app pointed at the Braintree sandbox.
func (c *Config) SandboxInProduction() bool {
	return c.App.IsProd() && c.Braintree.Environment() == BraintreeEnvSandbox
}

type AppConfig struct {
	Env          string `envconfig:"APP_ENV" default:"development"`
	Port         string `envconfig:"PORT" default:"3000"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT"`
	LogWarnStack bool   `envconfig:"LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "dev")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "prod")
}

func (a *AppConfig) validate() error {
	switch env := strings.ToLower(strings.TrimSpace(a.Env)); env {
	case "", "dev":
		a.Env = AppEnvDev
	case "prod":
		a.Env = AppEnvProd
	default:
		a.Env = env
	}

	if strings.TrimSpace(a.Port) == "" {
		a.Port = "3000"
	}

	if level := strings.TrimSpace(a.LogLevel); level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(level)); err != nil {
			return fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}

	switch format := strings.ToLower(strings.TrimSpace(a.LogFormat)); format {
	case "":
		// console for local development, json everywhere else
		if a.IsDev() {
			a.LogFormat = logger.FormatConsole
		} else {
			a.LogFormat = logger.FormatJSON
		}
	case logger.FormatJSON, logger.FormatConsole:
		a.LogFormat = format
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvLogFormat, logger.FormatJSON, logger.FormatConsole, a.LogFormat)
	}
	return nil
}

// Addr is the listen address derived from Port.
func (a AppConfig) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(a.Port), ":")
}

type HTTPConfig struct {
	ReadHeaderTimeout time.Duration `envconfig:"HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout      time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout       time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func (h HTTPConfig) validate() error {
	for _, tt := range []struct {
		name  string
		value time.Duration
	}{
		{EnvHTTPReadHeaderTimeout, h.ReadHeaderTimeout},
		{EnvHTTPReadTimeout, h.ReadTimeout},
		{EnvHTTPWriteTimeout, h.WriteTimeout},
		{EnvHTTPIdleTimeout, h.IdleTimeout},
		{EnvHTTPShutdownTimeout, h.ShutdownTimeout},
	} {
		if tt.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", tt.name, tt.value)
		}
	}
	return nil
}

type BraintreeConfig struct {
	Env        string `envconfig:"BRAINTREE_ENVIRONMENT" default:"sandbox"`
	MerchantID string `envconfig:"BRAINTREE_MERCHANT_ID" required:"true"`
	PublicKey  string `envconfig:"BRAINTREE_PUBLIC_KEY" required:"true"`
	PrivateKey string `envconfig:"BRAINTREE_PRIVATE_KEY" required:"true"`
	// PlanID is the plan every subscription is created against.
	PlanID string `envconfig:"BRAINTREE_PLAN_ID" default:"sc78"`
}

// Environment returns the normalized Braintree environment (sandbox/production).
func (b BraintreeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(b.Env))
	if env == "" {
		return BraintreeEnvSandbox
	}
	return env
}

// RedisConfig is optional; an empty URL disables rate limiting.
type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type RateLimitConfig struct {
	SubscriptionWindow  time.Duration `envconfig:"RATE_LIMIT_SUBSCRIPTION_WINDOW" default:"1m"`
	SubscriptionIPLimit int           `envconfig:"RATE_LIMIT_SUBSCRIPTION_IP_LIMIT" default:"10"`
}
