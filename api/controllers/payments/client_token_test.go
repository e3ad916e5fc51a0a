package payments

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/braintree-broker/internal/payments"
	"github.com/angelmondragon/braintree-broker/internal/payments/paymentstest"
	pkgerrors "github.com/angelmondragon/braintree-broker/pkg/errors"
	"github.com/angelmondragon/braintree-broker/pkg/logger"
)

func newTokenHandler(t *testing.T, processor *paymentstest.Processor) http.Handler {
	t.Helper()
	svc, err := payments.NewTokenService(processor)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	return ClientToken(svc, logger.Nop())
}

func TestClientTokenReturnsExactToken(t *testing.T) {
	processor := &paymentstest.Processor{Token: "eyJ2ZXJzaW9uIjoyfQ=="}
	handler := newTokenHandler(t, processor)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/client_token", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "eyJ2ZXJzaW9uIjoyfQ==" {
		t.Fatalf("body must be exactly the token, got %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if processor.TokenCalls() != 1 {
		t.Fatalf("expected one token call, got %d", processor.TokenCalls())
	}
}

func TestClientTokenFailureReturns500(t *testing.T) {
	processor := &paymentstest.Processor{TokenErr: errors.New("authentication error")}
	handler := newTokenHandler(t, processor)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/client_token", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeProcessor) {
		t.Fatalf("unexpected code %s", payload.Error.Code)
	}
	if processor.TokenCalls() != 1 {
		t.Fatalf("failures must not be retried, got %d calls", processor.TokenCalls())
	}
}

func TestClientTokenWithoutService(t *testing.T) {
	rec := httptest.NewRecorder()
	ClientToken(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/client_token", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
