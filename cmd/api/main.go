package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/braintree-broker/api/routes"
	"github.com/angelmondragon/braintree-broker/internal/payments"
	"github.com/angelmondragon/braintree-broker/internal/subscriptions"
	"github.com/angelmondragon/braintree-broker/internal/webhooks"
	"github.com/angelmondragon/braintree-broker/pkg/braintree"
	"github.com/angelmondragon/braintree-broker/pkg/config"
	"github.com/angelmondragon/braintree-broker/pkg/instance"
	"github.com/angelmondragon/braintree-broker/pkg/logger"
	"github.com/angelmondragon/braintree-broker/pkg/metrics"
	"github.com/angelmondragon/braintree-broker/pkg/redis"
)

const serviceName = "braintree-broker"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	paymentMetrics := metrics.NewPaymentMetrics(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	processor, err := braintree.NewClient(ctx, cfg.Braintree, paymentMetrics, logg)
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	} else {
		logg.Info(ctx, "redis not configured, subscription rate limiting disabled")
	}

	tokenService, err := payments.NewTokenService(processor)
	if err != nil {
		return err
	}
	subscriptionService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Processor: processor,
		PlanID:    cfg.Braintree.PlanID,
		Logger:    logg,
	})
	if err != nil {
		return err
	}
	webhookService, err := webhooks.NewService(webhooks.ServiceParams{
		Processor: processor,
		Metrics:   paymentMetrics,
		Logger:    logg,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: cfg.App.Addr(),
		Handler: routes.NewRouter(
			cfg,
			logg,
			reg,
			httpMetrics,
			redisClient,
			tokenService,
			subscriptionService,
			webhookService,
		),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"addr":          server.Addr,
		"instance":      instance.GetID(),
		"braintree_env": processor.Environment(),
		"plan_id":       cfg.Braintree.PlanID,
	})
	if cfg.SandboxInProduction() {
		logg.Warn(logCtx, "production app is using the braintree sandbox")
	}
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		return multierr.Append(shutdownErr, server.Close())
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
