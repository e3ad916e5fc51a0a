package subscriptions

import (
	"net/http"

	"github.com/angelmondragon/braintree-broker/api/responses"
	"github.com/angelmondragon/braintree-broker/api/validators"
	subsvc "github.com/angelmondragon/braintree-broker/internal/subscriptions"
	pkgerrors "github.com/angelmondragon/braintree-broker/pkg/errors"
	"github.com/angelmondragon/braintree-broker/pkg/logger"
)

type createSubscriptionRequest struct {
	PaymentMethodNonce string `json:"paymentMethodNonce" validate:"required"`
	PlanID             string `json:"planId"`
}

// CreateSubscription vaults the nonce on a new customer and subscribes it.
// The success body is the bare subscription record.
func CreateSubscription(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		var payload createSubscriptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.Create(r.Context(), subsvc.CreateSubscriptionInput{
			PaymentMethodNonce: payload.PaymentMethodNonce,
			RequestedPlanID:    payload.PlanID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, sub)
	}
}
