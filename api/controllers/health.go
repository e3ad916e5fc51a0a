package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/braintree-broker/api/responses"
	"github.com/angelmondragon/braintree-broker/pkg/config"
	pkgerrors "github.com/angelmondragon/braintree-broker/pkg/errors"
	"github.com/angelmondragon/braintree-broker/pkg/logger"
	"github.com/angelmondragon/braintree-broker/pkg/redis"
)

const (
	envHeader    = "X-Broker-Env"
	readyTimeout = 2 * time.Second
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the optional Redis dependency. A nil pinger means the
// service runs without Redis and is always ready.
func HealthReady(cfg *config.Config, pinger redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable").
					WithDetails(map[string]string{"dependency": "redis"}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
