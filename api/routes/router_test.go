package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servana-app/servana-backend/internal/audit"
	"github.com/servana-app/servana-backend/internal/bridge"
	"github.com/servana-app/servana-backend/internal/flags"
	internalorders "github.com/servana-app/servana-backend/internal/orders"
	"github.com/servana-app/servana-backend/internal/payments"
	"github.com/servana-app/servana-backend/internal/tickets"
	"github.com/servana-app/servana-backend/internal/wallet"
	pkgAuth "github.com/servana-app/servana-backend/pkg/auth"
	"github.com/servana-app/servana-backend/pkg/config"
	"github.com/servana-app/servana-backend/pkg/db/models"
	"github.com/servana-app/servana-backend/pkg/enums"
	"github.com/servana-app/servana-backend/pkg/logger"
	"github.com/servana-app/servana-backend/pkg/pagination"
)

type routeOrdersStub struct{}

func (routeOrdersStub) Create(context.Context, internalorders.CreateInput) (*models.Order, error) {
	return &models.Order{}, nil
}

func (routeOrdersStub) Get(context.Context, uuid.UUID, int64) (*models.Order, error) {
	return &models.Order{}, nil
}

func (routeOrdersStub) List(context.Context, uuid.UUID, pagination.Params) (*internalorders.Page, error) {
	return &internalorders.Page{}, nil
}

func (routeOrdersStub) Transition(context.Context, internalorders.TransitionInput) (*models.Order, error) {
	return &models.Order{}, nil
}

type routePaymentsStub struct{}

func (routePaymentsStub) Checkout(context.Context, payments.CheckoutInput) (*payments.CheckoutResult, error) {
	return &payments.CheckoutResult{}, nil
}

type routeBridgeStub struct{}

func (routeBridgeStub) Dispatch(context.Context, uuid.UUID, int64) (*bridge.Result, error) {
	return &bridge.Result{}, nil
}

type routeWalletStub struct{}

func (routeWalletStub) Append(context.Context, wallet.AppendInput) (*models.WalletTransaction, error) {
	return &models.WalletTransaction{}, nil
}

func (routeWalletStub) Balance(context.Context, uuid.UUID, int64) (int64, error) { return 0, nil }

func (routeWalletStub) History(context.Context, uuid.UUID, int64, pagination.Params) (*wallet.HistoryPage, error) {
	return &wallet.HistoryPage{}, nil
}

type routeTicketsStub struct{}

func (routeTicketsStub) Open(context.Context, tickets.OpenInput) (*models.SupportTicket, error) {
	return &models.SupportTicket{}, nil
}

func (routeTicketsStub) Get(context.Context, uuid.UUID, string) (*models.SupportTicket, error) {
	return &models.SupportTicket{}, nil
}

func (routeTicketsStub) ListPendingEscalated(context.Context, uuid.UUID, int) ([]models.SupportTicket, error) {
	return nil, nil
}

func (routeTicketsStub) Resolve(context.Context, tickets.ResolveInput) (*models.SupportTicket, error) {
	return &models.SupportTicket{}, nil
}

type routeFlagsStub struct {
	disabled map[enums.FeatureFlag]bool
}

func (routeFlagsStub) List(context.Context, uuid.UUID) ([]flags.Flag, error) { return nil, nil }

func (s routeFlagsStub) IsEnabled(_ context.Context, _ uuid.UUID, name enums.FeatureFlag) (bool, error) {
	return !s.disabled[name], nil
}

func (routeFlagsStub) Toggle(context.Context, flags.ToggleInput) (*flags.Flag, error) {
	return &flags.Flag{}, nil
}

type routeAuditStub struct{}

func (s routeAuditStub) WithTx(*gorm.DB) audit.Repository { return s }

func (routeAuditStub) Create(context.Context, *models.AuditLogEntry) error { return nil }

func (routeAuditStub) List(context.Context, uuid.UUID, int) ([]models.AuditLogEntry, error) {
	return nil, nil
}

type nopPinger struct{}

func (nopPinger) Ping(context.Context) error { return nil }

func testRouter() http.Handler {
	return testRouterWithFlags(routeFlagsStub{})
}

func testRouterWithFlags(flagsService flags.Service) http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "test-secret", Issuer: "servana-test"}

	return NewRouter(RouterParams{
		Config:          cfg,
		Logger:          logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:              nopPinger{},
		OrdersService:   routeOrdersStub{},
		PaymentsService: routePaymentsStub{},
		BridgeService:   routeBridgeStub{},
		WalletService:   routeWalletStub{},
		TicketsService:  routeTicketsStub{},
		FlagsService:    flagsService,
		AuditRepo:       routeAuditStub{},
	})
}

func bearerFor(t *testing.T, role enums.MemberRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(
		config.JWTConfig{Secret: "test-secret", Issuer: "servana-test"},
		time.Now(), time.Hour,
		pkgAuth.AccessTokenPayload{UserID: 1, TenantID: uuid.New(), Role: role},
	)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestRouterHealthLiveIsPublic(t *testing.T) {
	router := testRouter()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouterAPIRequiresAuth(t *testing.T) {
	router := testRouter()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouterAuthenticatedOrderList(t *testing.T) {
	router := testRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", bearerFor(t, enums.MemberRoleClient))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestRouterAdminRoutesAreGated(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/flags", nil)
	req.Header.Set("Authorization", bearerFor(t, enums.MemberRoleClient))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for client role, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/flags", nil)
	req.Header.Set("Authorization", bearerFor(t, enums.MemberRoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin role, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestRouterKillswitchBlocksCheckout(t *testing.T) {
	router := testRouterWithFlags(routeFlagsStub{
		disabled: map[enums.FeatureFlag]bool{enums.FeatureFlagPayments: true},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", nil)
	req.Header.Set("Authorization", bearerFor(t, enums.MemberRoleClient))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with payments switched off, got %d", rec.Code)
	}
}

func TestRouterWebhooksAbsentWithoutProviderClients(t *testing.T) {
	router := testRouter()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", nil))
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected webhook route to be unregistered, got %d", rec.Code)
	}
}
