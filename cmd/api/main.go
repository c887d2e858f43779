package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/slabstak/slabstak-backend/api/routes"
	"github.com/slabstak/slabstak-backend/internal/listings"
	"github.com/slabstak/slabstak-backend/internal/orders"
	"github.com/slabstak/slabstak-backend/internal/payments"
	"github.com/slabstak/slabstak-backend/internal/ratings"
	"github.com/slabstak/slabstak-backend/internal/subscriptions"
	stripewebhook "github.com/slabstak/slabstak-backend/internal/webhooks/stripe"
	"github.com/slabstak/slabstak-backend/pkg/config"
	"github.com/slabstak/slabstak-backend/pkg/db"
	"github.com/slabstak/slabstak-backend/pkg/logger"
	"github.com/slabstak/slabstak-backend/pkg/metrics"
	"github.com/slabstak/slabstak-backend/pkg/migrate"
	"github.com/slabstak/slabstak-backend/pkg/redis"
	pkgstripe "github.com/slabstak/slabstak-backend/pkg/stripe"
)

const webhookIdempotencyTTL = 24 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	listingsRepo := listings.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	transactionsRepo := payments.NewTransactionRepository(dbClient.DB())
	subscriptionsRepo := subscriptions.NewRepository(dbClient.DB())
	ratingsRepo := ratings.NewRepository(dbClient.DB())
	orderMessagesRepo := orders.NewMessageRepository(dbClient.DB())

	listingsSvc, err := listings.NewService(listings.Params{Repo: listingsRepo, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create listings service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(orders.Params{
		Repo:           ordersRepo,
		Listings:       listingsRepo,
		PlatformFeePct: cfg.Marketplace.PlatformFeePercent,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	orderMessagesSvc, err := orders.NewMessagesService(orders.MessagesParams{
		Messages: orderMessagesRepo,
		Orders:   ordersRepo,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order messages service", err)
		os.Exit(1)
	}

	paymentsSvc, err := payments.NewService(payments.Params{
		Orders:       ordersRepo,
		Listings:     listingsRepo,
		Transactions: transactionsRepo,
		Tx:           dbClient,
		Stripe:       payments.NewStripeClient(stripeClient),
		Currency:     cfg.Marketplace.Currency,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	billingClient := subscriptions.NewStripeClient(stripeClient)

	subscriptionsSvc, err := subscriptions.NewService(subscriptions.Params{
		Repo:   subscriptionsRepo,
		Stripe: billingClient,
		Config: cfg.Stripe,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	ratingsSvc, err := ratings.NewService(ratings.Params{
		Repo:   ratingsRepo,
		Orders: ordersRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ratings service", err)
		os.Exit(1)
	}

	webhookSvc, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		SubscriptionRepo: subscriptionsRepo,
		StripeClient:     billingClient,
		Logger:           logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookIdempotencyTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		HTTPMetrics:  metrics.NewHTTPMetrics(registry),
		Registry:     registry,
		Listings:     listingsSvc,
		Orders:       ordersSvc,
		Messages:     orderMessagesSvc,
		Payments:     paymentsSvc,
		Ratings:      ratingsSvc,
		Billing:      subscriptionsSvc,
		StripeClient: stripeClient,
		WebhookSvc:   webhookSvc,
		WebhookGuard: webhookGuard,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	var closeErr error
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "error closing clients", closeErr)
		os.Exit(1)
	}
}
