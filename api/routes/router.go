package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/servana-app/servana-backend/api/controllers"
	webhookcontrollers "github.com/servana-app/servana-backend/api/controllers/webhooks"
	"github.com/servana-app/servana-backend/api/middleware"
	"github.com/servana-app/servana-backend/internal/audit"
	"github.com/servana-app/servana-backend/internal/bridge"
	"github.com/servana-app/servana-backend/internal/flags"
	"github.com/servana-app/servana-backend/internal/orders"
	"github.com/servana-app/servana-backend/internal/payments"
	"github.com/servana-app/servana-backend/internal/tickets"
	"github.com/servana-app/servana-backend/internal/wallet"
	paymentwebhook "github.com/servana-app/servana-backend/internal/webhooks/payment"
	"github.com/servana-app/servana-backend/pkg/config"
	"github.com/servana-app/servana-backend/pkg/db"
	"github.com/servana-app/servana-backend/pkg/enums"
	"github.com/servana-app/servana-backend/pkg/logger"
	"github.com/servana-app/servana-backend/pkg/redis"
	"github.com/servana-app/servana-backend/pkg/square"
	"github.com/servana-app/servana-backend/pkg/stripe"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger

	DB    db.Pinger
	Redis *redis.Client

	OrdersService   orders.Service
	PaymentsService payments.Service
	BridgeService   bridge.Service
	WalletService   wallet.Service
	TicketsService  tickets.Service
	FlagsService    flags.Service
	AuditRepo       audit.Repository

	WebhookService *paymentwebhook.Service
	StripeClient   *stripe.Client
	SquareClient   *square.Client
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		if p.StripeClient != nil {
			r.Post("/stripe", webhookcontrollers.StripeWebhook(p.WebhookService, p.StripeClient, logg))
		}
		if p.SquareClient != nil {
			r.Post("/square", webhookcontrollers.SquareWebhook(p.WebhookService, p.SquareClient, logg))
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(p.OrdersService, logg))
			r.Get("/", controllers.OrderList(p.OrdersService, logg))
			r.Get("/{orderID}", controllers.OrderDetail(p.OrdersService, logg))
			r.Post("/{orderID}/transition", controllers.OrderTransition(p.OrdersService, logg))
			r.With(
				middleware.RequireElevated(logg),
				middleware.FeatureGate(p.FlagsService, enums.FeatureFlagBridge, logg),
			).Post("/manual-bridge/{orderID}", controllers.BridgeDispatch(p.BridgeService, logg))
		})

		r.With(middleware.FeatureGate(p.FlagsService, enums.FeatureFlagPayments, logg)).
			Post("/payments/checkout", controllers.Checkout(p.PaymentsService, logg))

		r.Route("/wallet", func(r chi.Router) {
			r.Use(middleware.FeatureGate(p.FlagsService, enums.FeatureFlagWallet, logg))
			r.Get("/balance", controllers.WalletBalance(p.WalletService, logg))
			r.Get("/history", controllers.WalletHistory(p.WalletService, logg))
		})

		r.Route("/support/tickets", func(r chi.Router) {
			r.Use(middleware.FeatureGate(p.FlagsService, enums.FeatureFlagSupport, logg))
			r.Post("/", controllers.TicketOpen(p.TicketsService, logg))
			r.With(middleware.RequireElevated(logg)).
				Get("/", controllers.TicketList(p.TicketsService, logg))
			r.Get("/{ticketID}", controllers.TicketDetail(p.TicketsService, logg))
			r.With(middleware.RequireElevated(logg)).
				Post("/{ticketID}/resolve", controllers.TicketResolve(p.TicketsService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireElevated(logg))
			r.Get("/flags", controllers.FlagList(p.FlagsService, logg))
			r.Post("/flags/{name}/toggle", controllers.FlagToggle(p.FlagsService, logg))
			r.Get("/audit", controllers.AuditList(p.AuditRepo, logg))
		})
	})

	return r
}
