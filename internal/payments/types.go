package payments

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// NotificationKind enumerates the webhook kinds the processor sends.
type NotificationKind string

const (
	KindSubscriptionChargedSuccessfully   NotificationKind = "subscription_charged_successfully"
	KindSubscriptionChargedUnsuccessfully NotificationKind = "subscription_charged_unsuccessfully"
	KindSubscriptionCanceled              NotificationKind = "subscription_canceled"
	KindSubscriptionExpired               NotificationKind = "subscription_expired"
	KindSubscriptionWentActive            NotificationKind = "subscription_went_active"
	KindSubscriptionWentPastDue           NotificationKind = "subscription_went_past_due"
	KindCheck                             NotificationKind = "check"
)

func (k NotificationKind) String() string {
	return string(k)
}

// Processor is the payment gateway surface the HTTP handlers depend on.
// One authenticated instance is shared by all requests.
type Processor interface {
	GenerateClientToken(ctx context.Context) (string, error)
	CreateCustomer(ctx context.Context, nonce string) (*CustomerResult, error)
	CreateSubscription(ctx context.Context, paymentMethodToken, planID string) (*SubscriptionResult, error)
	ParseWebhook(ctx context.Context, signature, payload string) (*Notification, error)
}

// PaymentMethod is a vaulted instrument attached to a customer.
type PaymentMethod struct {
	Token   string
	Default bool
}

type Customer struct {
	ID             string
	PaymentMethods []PaymentMethod
}

// CustomerResult mirrors the processor's result object: Success=false means the
// processor declined the request and Message explains why.
type CustomerResult struct {
	Success  bool
	Message  string
	Customer *Customer
}

type Subscription struct {
	ID                 string           `json:"id"`
	PlanID             string           `json:"planId"`
	PaymentMethodToken string           `json:"paymentMethodToken"`
	Status             string           `json:"status"`
	Price              *decimal.Decimal `json:"price,omitempty"`
}

type SubscriptionResult struct {
	Success      bool
	Message      string
	Subscription *Subscription
}

// Notification is a verified, decoded webhook delivery.
type Notification struct {
	Kind           NotificationKind
	Timestamp      time.Time
	SubscriptionID string
}
