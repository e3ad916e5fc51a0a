package config

// EnvPrefix is empty: variable names match the deployment environment verbatim.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"

	BraintreeEnvSandbox    = "sandbox"
	BraintreeEnvProduction = "production"
)

const (
	EnvAppEnv    = "APP_ENV"
	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvBraintreeEnvironment = "BRAINTREE_ENVIRONMENT"
	EnvBraintreeMerchantID  = "BRAINTREE_MERCHANT_ID"
	EnvBraintreePublicKey   = "BRAINTREE_PUBLIC_KEY"
	EnvBraintreePrivateKey  = "BRAINTREE_PRIVATE_KEY"
	EnvBraintreePlanID      = "BRAINTREE_PLAN_ID"

	EnvRedisURL = "REDIS_URL"

	EnvRateLimitSubscriptionWindow  = "RATE_LIMIT_SUBSCRIPTION_WINDOW"
	EnvRateLimitSubscriptionIPLimit = "RATE_LIMIT_SUBSCRIPTION_IP_LIMIT"

	EnvHTTPReadHeaderTimeout = "HTTP_READ_HEADER_TIMEOUT"
	EnvHTTPReadTimeout       = "HTTP_READ_TIMEOUT"
	EnvHTTPWriteTimeout      = "HTTP_WRITE_TIMEOUT"
	EnvHTTPIdleTimeout       = "HTTP_IDLE_TIMEOUT"
	EnvHTTPShutdownTimeout   = "SHUTDOWN_TIMEOUT"
)
