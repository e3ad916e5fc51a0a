package webhooks

import (
	"context"

	"github.com/angelmondragon/braintree-broker/internal/payments"
	"github.com/angelmondragon/braintree-broker/pkg/logger"
	"github.com/angelmondragon/braintree-broker/pkg/metrics"
)

// ChargeRecorder is the default Dispatcher: it logs the charge and counts it.
type ChargeRecorder struct {
	metrics *metrics.PaymentMetrics
	logg    *logger.Logger
}

func NewChargeRecorder(m *metrics.PaymentMetrics, logg *logger.Logger) *ChargeRecorder {
	if logg == nil {
		logg = logger.Nop()
	}
	return &ChargeRecorder{metrics: m, logg: logg}
}

func (r *ChargeRecorder) SubscriptionCharged(ctx context.Context, n *payments.Notification) error {
	fields := map[string]any{"notification_timestamp": n.Timestamp}
	if n.SubscriptionID != "" {
		fields["subscription_id"] = n.SubscriptionID
	}
	r.logg.Info(r.logg.WithFields(ctx, fields), "webhooks.subscription_charged")
	r.metrics.IncSubscriptionCharged()
	return nil
}
