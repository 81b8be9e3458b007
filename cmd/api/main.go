package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/servana-app/servana-backend/api/routes"
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
	"github.com/servana-app/servana-backend/pkg/events"
	"github.com/servana-app/servana-backend/pkg/logger"
	"github.com/servana-app/servana-backend/pkg/metrics"
	"github.com/servana-app/servana-backend/pkg/migrate"
	"github.com/servana-app/servana-backend/pkg/pubsub"
	"github.com/servana-app/servana-backend/pkg/redis"
	"github.com/servana-app/servana-backend/pkg/square"
	"github.com/servana-app/servana-backend/pkg/stripe"
)

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
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var emitter *events.Publisher
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		emitter, err = events.NewPublisher(pubsubClient.DomainPublisher(), logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create event publisher", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "pubsub project not configured, domain events disabled")
	}

	gormDB := dbClient.DB()
	ordersRepo := orders.NewRepository(gormDB)
	walletRepo := wallet.NewRepository(gormDB)
	ticketsRepo := tickets.NewRepository(gormDB)
	flagsRepo := flags.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repository:        ordersRepo,
		TransactionRunner: dbClient,
	})
	exitOn(logg, "failed to create orders service", err)

	walletService, err := wallet.NewService(walletRepo)
	exitOn(logg, "failed to create wallet service", err)

	directory, err := bridge.LoadDirectory(cfg.Bridge.PartnersFile)
	exitOn(logg, "failed to load partner directory", err)

	bridgeService, err := bridge.NewService(bridge.ServiceParams{
		Directory:         directory,
		OrdersRepo:        ordersRepo,
		TransactionRunner: dbClient,
		Events:            emitter,
		Logger:            logg,
		CommissionRate:    cfg.Bridge.CommissionRate,
		PaymentLinkFmt:    cfg.Payments.CheckoutLinkFmt,
	})
	exitOn(logg, "failed to create bridge service", err)

	var stripeClient *stripe.Client
	var squareClient *square.Client
	var gateway payments.IntentGateway
	switch cfg.Payments.ProviderNormalized() {
	case config.ProviderSquare:
		squareClient, err = square.NewClient(context.Background(), cfg.Square, logg)
		exitOn(logg, "failed to bootstrap square", err)
		gateway, err = payments.NewSquareGateway(squareClient)
		exitOn(logg, "failed to create square gateway", err)
	default:
		stripeClient, err = stripe.NewClient(context.Background(), cfg.Stripe, logg)
		exitOn(logg, "failed to bootstrap stripe", err)
		gateway, err = payments.NewStripeGateway(stripeClient)
		exitOn(logg, "failed to create stripe gateway", err)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		OrdersRepo:        ordersRepo,
		Gateway:           gateway,
		TransactionRunner: dbClient,
		Currency:          cfg.Payments.Currency,
		IntentTimeout:     cfg.Payments.IntentTimeout,
	})
	exitOn(logg, "failed to create payments service", err)

	ticketsService, err := tickets.NewService(tickets.ServiceParams{
		Repository:        ticketsRepo,
		TransactionRunner: dbClient,
		Events:            emitter,
		Logger:            logg,
	})
	exitOn(logg, "failed to create tickets service", err)

	flagsService, err := flags.NewService(flags.ServiceParams{
		Repository:        flagsRepo,
		AuditRepo:         auditRepo,
		TransactionRunner: dbClient,
		Events:            emitter,
		Logger:            logg,
	})
	exitOn(logg, "failed to create flags service", err)

	guard, err := paymentwebhook.NewIdempotencyGuard(redisClient, cfg.Webhooks.IdempotencyTTL, "payment-webhook")
	exitOn(logg, "failed to create webhook idempotency guard", err)

	webhookService, err := paymentwebhook.NewService(paymentwebhook.ServiceParams{
		OrdersRepo:        ordersRepo,
		WalletRepo:        walletRepo,
		TransactionRunner: dbClient,
		Guard:             guard,
		Events:            emitter,
		Logger:            logg,
		Metrics:           metrics.NewWebhookMetrics(prometheus.DefaultRegisterer),
	})
	exitOn(logg, "failed to create webhook service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"provider": cfg.Payments.Provider,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			OrdersService:   ordersService,
			PaymentsService: paymentsService,
			BridgeService:   bridgeService,
			WalletService:   walletService,
			TicketsService:  ticketsService,
			FlagsService:    flagsService,
			AuditRepo:       auditRepo,
			WebhookService:  webhookService,
			StripeClient:    stripeClient,
			SquareClient:    squareClient,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func exitOn(logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
