// Package paymentstest provides an in-memory payments.Processor for tests.
package paymentstest

import (
	"context"
	"sync"

	"github.com/angelmondragon/braintree-broker/internal/payments"
)

// SubscriptionCall records the arguments of one CreateSubscription call.
type SubscriptionCall struct {
	PaymentMethodToken string
	PlanID             string
}

// WebhookCall records the arguments of one ParseWebhook call.
type WebhookCall struct {
	Signature string
	Payload   string
}

// Processor is a scriptable payments.Processor that records every call.
type Processor struct {
	Token    string
	TokenErr error

	CustomerResult *payments.CustomerResult
	CustomerErr    error

	SubscriptionResult *payments.SubscriptionResult
	SubscriptionErr    error

	Notification *payments.Notification
	WebhookErr   error

	mu                sync.Mutex
	tokenCalls        int
	customerNonces    []string
	subscriptionCalls []SubscriptionCall
	webhookCalls      []WebhookCall
}

var _ payments.Processor = (*Processor)(nil)

func (p *Processor) GenerateClientToken(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokenCalls++
	return p.Token, p.TokenErr
}

func (p *Processor) CreateCustomer(_ context.Context, nonce string) (*payments.CustomerResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customerNonces = append(p.customerNonces, nonce)
	return p.CustomerResult, p.CustomerErr
}

func (p *Processor) CreateSubscription(_ context.Context, paymentMethodToken, planID string) (*payments.SubscriptionResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscriptionCalls = append(p.subscriptionCalls, SubscriptionCall{PaymentMethodToken: paymentMethodToken, PlanID: planID})
	return p.SubscriptionResult, p.SubscriptionErr
}

func (p *Processor) ParseWebhook(_ context.Context, signature, payload string) (*payments.Notification, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.webhookCalls = append(p.webhookCalls, WebhookCall{Signature: signature, Payload: payload})
	return p.Notification, p.WebhookErr
}

func (p *Processor) TokenCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenCalls
}

func (p *Processor) CustomerNonces() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.customerNonces...)
}

func (p *Processor) SubscriptionCalls() []SubscriptionCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]SubscriptionCall(nil), p.subscriptionCalls...)
}

func (p *Processor) WebhookCalls() []WebhookCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]WebhookCall(nil), p.webhookCalls...)
}

// Customer builds a successful customer result with one payment method per token.
func Customer(id string, tokens ...string) *payments.CustomerResult {
	methods := make([]payments.PaymentMethod, 0, len(tokens))
	for i, token := range tokens {
		methods = append(methods, payments.PaymentMethod{Token: token, Default: i == 0})
	}
	return &payments.CustomerResult{
		Success:  true,
		Customer: &payments.Customer{ID: id, PaymentMethods: methods},
	}
}

// Subscription builds a successful subscription result.
func Subscription(id, planID, token string) *payments.SubscriptionResult {
	return &payments.SubscriptionResult{
		Success: true,
		Subscription: &payments.Subscription{
			ID:                 id,
			PlanID:             planID,
			PaymentMethodToken: token,
			Status:             "Active",
		},
	}
}
