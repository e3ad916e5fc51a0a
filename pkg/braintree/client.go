package braintree

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	bt "github.com/braintree-go/braintree-go"

	"github.com/angelmondragon/braintree-broker/internal/payments"
	"github.com/angelmondragon/braintree-broker/pkg/config"
	pkgerrors "github.com/angelmondragon/braintree-broker/pkg/errors"
	"github.com/angelmondragon/braintree-broker/pkg/logger"
	"github.com/angelmondragon/braintree-broker/pkg/metrics"
)

const (
	opClientToken        = "generate_client_token"
	opCreateCustomer     = "create_customer"
	opCreateSubscription = "create_subscription"
	opParseWebhook       = "parse_webhook"
)

var (
	errMerchantIDRequired = errors.New("braintree merchant id is required")
	errPublicKeyRequired  = errors.New("braintree public key is required")
	errPrivateKeyRequired = errors.New("braintree private key is required")
	errInvalidEnv         = fmt.Errorf("braintree environment must be %q or %q", config.BraintreeEnvSandbox, config.BraintreeEnvProduction)
	errLoggerRequired     = errors.New("braintree logger is required")
)

// gateway is the slice of the SDK this package calls.
type gateway interface {
	GenerateClientToken(ctx context.Context) (string, error)
	CreateCustomer(ctx context.Context, req *bt.CustomerRequest) (*bt.Customer, error)
	CreateSubscription(ctx context.Context, req *bt.SubscriptionRequest) (*bt.Subscription, error)
	ParseWebhook(signature, payload string) (*bt.WebhookNotification, error)
}

type sdkGateway struct {
	sdk *bt.Braintree
}

func (g sdkGateway) GenerateClientToken(ctx context.Context) (string, error) {
	return g.sdk.ClientToken().Generate(ctx)
}

func (g sdkGateway) CreateCustomer(ctx context.Context, req *bt.CustomerRequest) (*bt.Customer, error) {
	return g.sdk.Customer().Create(ctx, req)
}

func (g sdkGateway) CreateSubscription(ctx context.Context, req *bt.SubscriptionRequest) (*bt.Subscription, error) {
	return g.sdk.Subscription().Create(ctx, req)
}

func (g sdkGateway) ParseWebhook(signature, payload string) (*bt.WebhookNotification, error) {
	return g.sdk.WebhookNotification().Parse(signature, payload)
}

// Client implements payments.Processor on top of the Braintree SDK with
// centralized logging, metrics and error mapping.
type Client struct {
	gw          gateway
	environment string
	merchantID  string
	logger      *logger.Logger
	metrics     *metrics.PaymentMetrics
}

var _ payments.Processor = (*Client)(nil)

// NewClient validates credentials and builds the single shared gateway.
func NewClient(ctx context.Context, cfg config.BraintreeConfig, m *metrics.PaymentMetrics, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env := cfg.Environment()
	var sdkEnv bt.Environment
	switch env {
	case config.BraintreeEnvSandbox:
		sdkEnv = bt.Sandbox
	case config.BraintreeEnvProduction:
		sdkEnv = bt.Production
	default:
		return nil, errInvalidEnv
	}

	merchantID := strings.TrimSpace(cfg.MerchantID)
	if merchantID == "" {
		return nil, errMerchantIDRequired
	}
	publicKey := strings.TrimSpace(cfg.PublicKey)
	if publicKey == "" {
		return nil, errPublicKeyRequired
	}
	privateKey := strings.TrimSpace(cfg.PrivateKey)
	if privateKey == "" {
		return nil, errPrivateKeyRequired
	}

	c := &Client{
		gw:          sdkGateway{sdk: bt.New(sdkEnv, merchantID, publicKey, privateKey)},
		environment: env,
		merchantID:  merchantID,
		logger:      logg,
		metrics:     m,
	}

	logg.Info(logg.WithField(ctx, "braintree_env", env), "braintree client initialized")
	return c, nil
}

// Environment reports the normalized Braintree environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

func (c *Client) GenerateClientToken(ctx context.Context) (string, error) {
	c.log(ctx, "request", opClientToken, nil)
	start := time.Now()

	token, err := c.gw.GenerateClientToken(ctx)
	if err != nil {
		c.observe(opClientToken, metrics.OutcomeError, start)
		c.log(ctx, "error", opClientToken, map[string]any{"error": err.Error()})
		return "", c.mapError(err, "generate client token")
	}

	c.observe(opClientToken, metrics.OutcomeSuccess, start)
	c.log(ctx, "response", opClientToken, map[string]any{"token_length": len(token)})
	return token, nil
}

// CreateCustomer vaults the nonce on a new customer. A processor validation
// failure comes back as Success=false rather than an error.
func (c *Client) CreateCustomer(ctx context.Context, nonce string) (*payments.CustomerResult, error) {
	c.log(ctx, "request", opCreateCustomer, map[string]any{"nonce": nonce})
	start := time.Now()

	customer, err := c.gw.CreateCustomer(ctx, &bt.CustomerRequest{PaymentMethodNonce: nonce})
	if err != nil {
		if msg, ok := rejectionMessage(err); ok {
			c.observe(opCreateCustomer, metrics.OutcomeRejected, start)
			c.log(ctx, "rejected", opCreateCustomer, map[string]any{"message": msg})
			return &payments.CustomerResult{Success: false, Message: msg}, nil
		}
		c.observe(opCreateCustomer, metrics.OutcomeError, start)
		c.log(ctx, "error", opCreateCustomer, map[string]any{"error": err.Error()})
		return nil, c.mapError(err, "create customer")
	}

	mapped := customerFromSDK(customer)
	c.observe(opCreateCustomer, metrics.OutcomeSuccess, start)
	c.log(ctx, "response", opCreateCustomer, map[string]any{
		"customer_id":     mapped.ID,
		"payment_methods": len(mapped.PaymentMethods),
	})
	return &payments.CustomerResult{Success: true, Customer: mapped}, nil
}

func (c *Client) CreateSubscription(ctx context.Context, paymentMethodToken, planID string) (*payments.SubscriptionResult, error) {
	c.log(ctx, "request", opCreateSubscription, map[string]any{
		"plan_id":              planID,
		"payment_method_token": paymentMethodToken,
	})
	start := time.Now()

	sub, err := c.gw.CreateSubscription(ctx, &bt.SubscriptionRequest{
		PaymentMethodToken: paymentMethodToken,
		PlanId:             planID,
	})
	if err != nil {
		if msg, ok := rejectionMessage(err); ok {
			c.observe(opCreateSubscription, metrics.OutcomeRejected, start)
			c.log(ctx, "rejected", opCreateSubscription, map[string]any{"message": msg})
			return &payments.SubscriptionResult{Success: false, Message: msg}, nil
		}
		c.observe(opCreateSubscription, metrics.OutcomeError, start)
		c.log(ctx, "error", opCreateSubscription, map[string]any{"error": err.Error()})
		return nil, c.mapError(err, "create subscription")
	}
	if sub == nil {
		c.observe(opCreateSubscription, metrics.OutcomeError, start)
		return nil, pkgerrors.New(pkgerrors.CodeProcessor, "braintree create subscription returned no subscription")
	}

	mapped := subscriptionFromSDK(sub)
	c.observe(opCreateSubscription, metrics.OutcomeSuccess, start)
	c.log(ctx, "response", opCreateSubscription, map[string]any{
		"subscription_id": mapped.ID,
		"status":          mapped.Status,
	})
	return &payments.SubscriptionResult{Success: true, Subscription: mapped}, nil
}

// ParseWebhook verifies the signature against the configured keys and decodes
// the payload. The SDK call is synchronous, so it settles exactly once.
func (c *Client) ParseWebhook(ctx context.Context, signature, payload string) (*payments.Notification, error) {
	c.log(ctx, "request", opParseWebhook, map[string]any{"signature": signature, "payload": payload})
	start := time.Now()

	n, err := c.gw.ParseWebhook(signature, payload)
	if err != nil {
		c.observe(opParseWebhook, metrics.OutcomeError, start)
		c.log(ctx, "error", opParseWebhook, map[string]any{"error": err.Error()})
		return nil, c.mapError(err, "parse webhook")
	}
	if n == nil {
		c.observe(opParseWebhook, metrics.OutcomeError, start)
		return nil, pkgerrors.New(pkgerrors.CodeProcessor, "braintree parse webhook returned no notification")
	}

	mapped := notificationFromSDK(n)
	c.observe(opParseWebhook, metrics.OutcomeSuccess, start)
	c.log(ctx, "response", opParseWebhook, map[string]any{"kind": mapped.Kind.String()})
	return mapped, nil
}

func (c *Client) observe(op, outcome string, start time.Time) {
	c.metrics.ObserveCall(op, outcome, time.Since(start))
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("braintree %s", op), errors.New(fmt.Sprint(fields["error"])))
	case "rejected":
		c.logger.Warn(ctx, fmt.Sprintf("braintree %s rejected", op))
	default:
		c.logger.Info(ctx, fmt.Sprintf("braintree %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	if strings.HasSuffix(lower, "_length") {
		return value
	}
	for _, sensitive := range []string{"nonce", "token", "signature", "payload", "card", "cvv", "secret", "key"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

// rejectionMessage reports whether err is a processor validation/decline
// response (api-error-response) rather than a transport or server fault.
func rejectionMessage(err error) (string, bool) {
	var apiErr *bt.BraintreeError
	if !errors.As(err, &apiErr) || apiErr == nil {
		return "", false
	}
	msg := strings.TrimSpace(apiErr.ErrorMessage)
	if msg == "" {
		msg = strings.TrimSpace(apiErr.Error())
	}
	return msg, true
}

type statusCoder interface {
	StatusCode() int
}

func (c *Client) mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	details := map[string]any{"error": err.Error()}
	var sc statusCoder
	if errors.As(err, &sc) && sc.StatusCode() != 0 {
		details["processor_status"] = sc.StatusCode()
		if sc.StatusCode() == http.StatusTooManyRequests {
			details["throttled"] = true
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeProcessor, err, fmt.Sprintf("braintree %s failed", op)).
		WithDetails(details)
}
