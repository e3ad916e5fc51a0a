package webhooks

import (
	"context"
	"net/http"

	"github.com/angelmondragon/braintree-broker/api/responses"
	"github.com/angelmondragon/braintree-broker/internal/payments"
	pkgerrors "github.com/angelmondragon/braintree-broker/pkg/errors"
	"github.com/angelmondragon/braintree-broker/pkg/logger"
)

const (
	signatureField = "bt_signature"
	payloadField   = "bt_payload"
)

type NotificationHandler interface {
	HandleNotification(ctx context.Context, signature, payload string) (*payments.Notification, error)
}

// BraintreeWebhook acknowledges a verified delivery with an empty 200.
func BraintreeWebhook(svc NotificationHandler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		signature := r.PostFormValue(signatureField)
		payload := r.PostFormValue(payloadField)

		n, err := svc.HandleNotification(ctx, signature, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil && n != nil {
			logg.Info(logg.WithNotificationKind(ctx, n.Kind.String()), "webhooks.acknowledged")
		}
		responses.WriteEmpty(w, http.StatusOK)
	}
}
