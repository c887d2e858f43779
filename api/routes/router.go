package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slabstak/slabstak-backend/api/controllers"
	billingcontrollers "github.com/slabstak/slabstak-backend/api/controllers/billing"
	listingcontrollers "github.com/slabstak/slabstak-backend/api/controllers/listings"
	ordercontrollers "github.com/slabstak/slabstak-backend/api/controllers/orders"
	paymentcontrollers "github.com/slabstak/slabstak-backend/api/controllers/payments"
	ratingcontrollers "github.com/slabstak/slabstak-backend/api/controllers/ratings"
	webhookcontrollers "github.com/slabstak/slabstak-backend/api/controllers/webhooks"
	"github.com/slabstak/slabstak-backend/api/middleware"
	"github.com/slabstak/slabstak-backend/internal/listings"
	"github.com/slabstak/slabstak-backend/internal/orders"
	"github.com/slabstak/slabstak-backend/internal/payments"
	"github.com/slabstak/slabstak-backend/internal/ratings"
	"github.com/slabstak/slabstak-backend/internal/subscriptions"
	stripewebhook "github.com/slabstak/slabstak-backend/internal/webhooks/stripe"
	"github.com/slabstak/slabstak-backend/pkg/config"
	"github.com/slabstak/slabstak-backend/pkg/logger"
	"github.com/slabstak/slabstak-backend/pkg/metrics"
	"github.com/slabstak/slabstak-backend/pkg/stripe"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           controllers.Pinger
	Redis        controllers.Pinger
	HTTPMetrics  *metrics.HTTPMetrics
	Registry     *prometheus.Registry
	Listings     listings.Service
	Orders       orders.Service
	Messages     orders.MessagesService
	Payments     payments.Service
	Ratings      ratings.Service
	Billing      subscriptions.Service
	StripeClient *stripe.Client
	WebhookSvc   *stripewebhook.Service
	WebhookGuard *stripewebhook.IdempotencyGuard
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, d.DB, d.Redis))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(d.WebhookSvc, d.StripeClient, d.WebhookGuard, d.Logger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public marketplace reads
		r.Get("/listings", listingcontrollers.List(d.Listings, d.Logger))
		r.Get("/listings/{listingId}", listingcontrollers.Detail(d.Listings, d.Logger))
		r.Get("/users/{userId}/ratings", ratingcontrollers.ListForUser(d.Ratings, d.Logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.Config.JWT, d.Logger))

			r.Post("/listings", listingcontrollers.Create(d.Listings, d.Logger))
			r.Patch("/listings/{listingId}", listingcontrollers.Update(d.Listings, d.Logger))
			r.Delete("/listings/{listingId}", listingcontrollers.Delete(d.Listings, d.Logger))

			r.Post("/orders", ordercontrollers.Create(d.Orders, d.Logger))
			r.Get("/orders", ordercontrollers.List(d.Orders, d.Logger))
			r.Get("/orders/{orderId}", ordercontrollers.Detail(d.Orders, d.Logger))
			r.Patch("/orders/{orderId}", ordercontrollers.Update(d.Orders, d.Logger))
			r.Get("/orders/{orderId}/messages", ordercontrollers.ListMessages(d.Messages, d.Logger))
			r.Post("/orders/{orderId}/messages", ordercontrollers.SendMessage(d.Messages, d.Logger))

			r.Post("/payments/intent", paymentcontrollers.CreateIntent(d.Payments, d.Logger))
			r.Post("/payments/confirm", paymentcontrollers.Confirm(d.Payments, d.Logger))

			r.Post("/ratings", ratingcontrollers.Create(d.Ratings, d.Logger))

			r.Get("/billing/subscription", billingcontrollers.Subscription(d.Billing, d.Logger))
			r.Post("/billing/checkout", billingcontrollers.Checkout(d.Billing, d.Logger))
			r.Post("/billing/cancel", billingcontrollers.Cancel(d.Billing, d.Logger))
			r.Post("/billing/portal", billingcontrollers.Portal(d.Billing, d.Logger))
		})
	})

	return r
}
