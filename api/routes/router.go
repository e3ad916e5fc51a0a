package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/braintree-broker/api/controllers"
	paymentcontrollers "github.com/angelmondragon/braintree-broker/api/controllers/payments"
	subscriptioncontrollers "github.com/angelmondragon/braintree-broker/api/controllers/subscriptions"
	webhookcontrollers "github.com/angelmondragon/braintree-broker/api/controllers/webhooks"
	"github.com/angelmondragon/braintree-broker/api/middleware"
	"github.com/angelmondragon/braintree-broker/api/responses"
	subscriptionsvc "github.com/angelmondragon/braintree-broker/internal/subscriptions"
	"github.com/angelmondragon/braintree-broker/pkg/config"
	pkgerrors "github.com/angelmondragon/braintree-broker/pkg/errors"
	"github.com/angelmondragon/braintree-broker/pkg/logger"
	"github.com/angelmondragon/braintree-broker/pkg/metrics"
	"github.com/angelmondragon/braintree-broker/pkg/redis"
)

const (
	PathClientToken        = "/client_token"
	PathCreateSubscription = "/create_subscription"
	PathWebhooks           = "/webhooks"
)

// NewRouter wires the broker endpoints. redisClient may be nil, in which case
// rate limiting is off and readiness does not check Redis.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	redisClient *redis.Client,
	tokenService paymentcontrollers.TokenIssuer,
	subscriptionsService subscriptionsvc.Service,
	webhookService webhookcontrollers.NotificationHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
		middleware.BodyFormat(middleware.PathIs(PathWebhooks), logg),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeMethodNotAllowed, "method not allowed"))
	})

	var pinger redis.Pinger
	subscriptionLimit := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		pinger = redisClient
		policy := middleware.NewRateLimitPolicy(
			"create_subscription",
			cfg.RateLimit.SubscriptionWindow,
			cfg.RateLimit.SubscriptionIPLimit,
		)
		subscriptionLimit = middleware.RateLimit(policy, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, pinger, logg))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Get(PathClientToken, paymentcontrollers.ClientToken(tokenService, logg))
	r.With(subscriptionLimit).Post(PathCreateSubscription, subscriptioncontrollers.CreateSubscription(subscriptionsService, logg))
	r.Post(PathWebhooks, webhookcontrollers.BraintreeWebhook(webhookService, logg))

	return r
}
