package payments

import (
	"context"
	"net/http"

	"github.com/angelmondragon/braintree-broker/api/responses"
	pkgerrors "github.com/angelmondragon/braintree-broker/pkg/errors"
	"github.com/angelmondragon/braintree-broker/pkg/logger"
)

type TokenIssuer interface {
	ClientToken(ctx context.Context) (string, error)
}

// ClientToken responds with the raw processor token as text/plain.
func ClientToken(svc TokenIssuer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "token service unavailable"))
			return
		}

		token, err := svc.ClientToken(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteText(w, http.StatusOK, token)
	}
}
