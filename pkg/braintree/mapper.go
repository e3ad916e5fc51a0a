package braintree

import (
	bt "github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/braintree-broker/internal/payments"
)

func customerFromSDK(c *bt.Customer) *payments.Customer {
	if c == nil {
		return &payments.Customer{}
	}
	out := &payments.Customer{ID: c.Id}
	for _, pm := range c.PaymentMethods() {
		if pm == nil {
			continue
		}
		out.PaymentMethods = append(out.PaymentMethods, payments.PaymentMethod{
			Token:   pm.GetToken(),
			Default: pm.IsDefault(),
		})
	}
	return out
}

func subscriptionFromSDK(s *bt.Subscription) *payments.Subscription {
	out := &payments.Subscription{
		ID:                 s.Id,
		PlanID:             s.PlanId,
		PaymentMethodToken: s.PaymentMethodToken,
		Status:             string(s.Status),
	}
	if s.Price != nil {
		price := decimalFromSDK(s.Price)
		out.Price = &price
	}
	return out
}

func decimalFromSDK(d *bt.Decimal) decimal.Decimal {
	return decimal.New(d.Unscaled, -int32(d.Scale))
}

func notificationFromSDK(n *bt.WebhookNotification) *payments.Notification {
	out := &payments.Notification{
		Kind:      payments.NotificationKind(n.Kind),
		Timestamp: n.Timestamp,
	}
	if n.Subject != nil && n.Subject.Subscription != nil {
		out.SubscriptionID = n.Subject.Subscription.Id
	}
	return out
}
