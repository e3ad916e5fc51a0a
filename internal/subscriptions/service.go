package subscriptions

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/braintree-broker/internal/payments"
	pkgerrors "github.com/angelmondragon/braintree-broker/pkg/errors"
	"github.com/angelmondragon/braintree-broker/pkg/logger"
)

// Service defines the subscription sign-up surface.
type Service interface {
	Create(ctx context.Context, input CreateSubscriptionInput) (*payments.Subscription, error)
}

// ServiceParams groups dependencies for the subscription service.
type ServiceParams struct {
	Processor payments.Processor
	PlanID    string
	Logger    *logger.Logger
}

// CreateSubscriptionInput captures the data the client sends to start a subscription.
type CreateSubscriptionInput struct {
	PaymentMethodNonce string
	// RequestedPlanID is accepted for compatibility but never forwarded; every
	// subscription is created against the configured plan.
	RequestedPlanID string
}

type service struct {
	processor payments.Processor
	planID    string
	logg      *logger.Logger
}

// NewService builds a subscription service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Processor == nil {
		return nil, fmt.Errorf("processor required")
	}
	planID := strings.TrimSpace(params.PlanID)
	if planID == "" {
		return nil, fmt.Errorf("plan id required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		processor: params.Processor,
		planID:    planID,
		logg:      logg,
	}, nil
}

// Create vaults the nonce as a new customer, then subscribes the customer's
// first payment method to the configured plan. A declined subscription leaves
// the customer in place on the processor.
func (s *service) Create(ctx context.Context, input CreateSubscriptionInput) (*payments.Subscription, error) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"plan_id":           s.planID,
		"requested_plan_id": input.RequestedPlanID,
	})

	customerResult, err := s.processor.CreateCustomer(ctx, input.PaymentMethodNonce)
	if err != nil {
		return nil, payments.ProcessorFault(err, "create customer")
	}
	if customerResult == nil {
		return nil, pkgerrors.New(pkgerrors.CodeProcessor, "processor returned no customer result")
	}
	if !customerResult.Success {
		s.logg.Warn(ctx, "subscriptions.customer_rejected")
		return nil, payments.Rejection(customerResult.Message, "customer creation failed")
	}

	customer := customerResult.Customer
	if customer == nil || len(customer.PaymentMethods) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeProcessor, "customer has no payment methods")
	}
	ctx = s.logg.WithField(ctx, "customer_id", customer.ID)

	paymentMethodToken := customer.PaymentMethods[0].Token
	subResult, err := s.processor.CreateSubscription(ctx, paymentMethodToken, s.planID)
	if err != nil {
		s.logg.Warn(ctx, "subscriptions.customer_orphaned")
		return nil, payments.ProcessorFault(err, "create subscription")
	}
	if subResult == nil {
		s.logg.Warn(ctx, "subscriptions.customer_orphaned")
		return nil, pkgerrors.New(pkgerrors.CodeProcessor, "processor returned no subscription result")
	}
	if !subResult.Success {
		// TODO: delete the orphaned customer once product decides on rollback.
		s.logg.Warn(ctx, "subscriptions.customer_orphaned")
		return nil, payments.Rejection(subResult.Message, "subscription creation failed")
	}
	if subResult.Subscription == nil {
		return nil, pkgerrors.New(pkgerrors.CodeProcessor, "processor returned no subscription")
	}

	s.logg.Info(s.logg.WithField(ctx, "subscription_id", subResult.Subscription.ID), "subscriptions.created")
	return subResult.Subscription, nil
}
