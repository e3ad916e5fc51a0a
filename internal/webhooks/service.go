package webhooks

import (
	"context"

	"github.com/angelmondragon/braintree-broker/internal/payments"
	pkgerrors "github.com/angelmondragon/braintree-broker/pkg/errors"
	"github.com/angelmondragon/braintree-broker/pkg/logger"
	"github.com/angelmondragon/braintree-broker/pkg/metrics"
)

const missingFieldsMessage = "Missing required fields"

// Dispatcher receives the side effects of verified notifications.
type Dispatcher interface {
	SubscriptionCharged(ctx context.Context, n *payments.Notification) error
}

type ServiceParams struct {
	Processor  payments.Processor
	Dispatcher Dispatcher
	Metrics    *metrics.PaymentMetrics
	Logger     *logger.Logger
}

// Service verifies processor webhook deliveries and dispatches on kind.
// Deliveries are not deduplicated: a redelivery is handled like a first delivery.
type Service struct {
	processor  payments.Processor
	dispatcher Dispatcher
	metrics    *metrics.PaymentMetrics
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Processor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "processor required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	dispatcher := params.Dispatcher
	if dispatcher == nil {
		dispatcher = NewChargeRecorder(params.Metrics, logg)
	}
	return &Service{
		processor:  params.Processor,
		dispatcher: dispatcher,
		metrics:    params.Metrics,
		logg:       logg,
	}, nil
}

// HandleNotification validates, parses and dispatches one delivery.
func (s *Service) HandleNotification(ctx context.Context, signature, payload string) (*payments.Notification, error) {
	if signature == "" || payload == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, missingFieldsMessage)
	}

	notification, err := s.processor.ParseWebhook(ctx, signature, payload)
	if err != nil {
		return nil, payments.ProcessorFault(err, "parse webhook")
	}
	if notification == nil {
		return nil, pkgerrors.New(pkgerrors.CodeProcessor, "processor returned no notification")
	}

	ctx = s.logg.WithNotificationKind(ctx, notification.Kind.String())
	s.logg.Info(ctx, "webhooks.notification_parsed")
	s.metrics.IncNotification(notification.Kind.String())

	switch notification.Kind {
	case payments.KindSubscriptionChargedSuccessfully:
		if err := s.dispatcher.SubscriptionCharged(ctx, notification); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "dispatch subscription charge")
		}
	default:
		s.logg.Debug(ctx, "webhooks.notification_ignored")
	}

	return notification, nil
}
