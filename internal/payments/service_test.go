package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servana-app/servana-backend/internal/orders"
	"github.com/servana-app/servana-backend/pkg/db/models"
	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	order   *models.Order
	findErr error
	saved   *models.Order
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*models.Order, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.order, nil
}

func (s *stubOrdersRepo) FindByIDForUpdate(ctx context.Context, tenantID uuid.UUID, id int64) (*models.Order, error) {
	return s.FindByID(ctx, tenantID, id)
}

func (s *stubOrdersRepo) Save(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.saved = order
	return order, nil
}

func (s *stubOrdersRepo) List(ctx context.Context, tenantID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, error) {
	return nil, nil
}

type stubGateway struct {
	intent   *Intent
	err      error
	lastReq  IntentRequest
	numCalls int
}

func (s *stubGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	s.numCalls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.intent, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func newCheckoutService(t *testing.T, repo orders.Repository, gw IntentGateway) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		OrdersRepo:        repo,
		Gateway:           gw,
		TransactionRunner: stubTxRunner{},
		Currency:          "EUR",
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func pendingOrder(tenantID uuid.UUID) *models.Order {
	return &models.Order{
		TenantID: tenantID,
		ID:       1,
		Category: "Canalização",
		Area:     "Almada",
		ClientID: 123,
		Status:   enums.OrderStatusPending,
	}
}

func TestCheckoutValidatesInput(t *testing.T) {
	tenantID := uuid.New()
	gw := &stubGateway{intent: &Intent{ClientSecret: "cs_test", Provider: "stripe"}}
	svc := newCheckoutService(t, &stubOrdersRepo{order: pendingOrder(tenantID)}, gw)

	cases := []struct {
		name  string
		input CheckoutInput
	}{
		{"amount below minimum", CheckoutInput{TenantID: tenantID, OrderID: 1, AmountCents: 99, CommissionRate: 0.1, Model: enums.CommissionModelBridge}},
		{"rate above ceiling", CheckoutInput{TenantID: tenantID, OrderID: 1, AmountCents: 10000, CommissionRate: 0.51, Model: enums.CommissionModelInternal}},
		{"negative rate", CheckoutInput{TenantID: tenantID, OrderID: 1, AmountCents: 10000, CommissionRate: -0.1, Model: enums.CommissionModelInternal}},
		{"unknown model", CheckoutInput{TenantID: tenantID, OrderID: 1, AmountCents: 10000, CommissionRate: 0.1, Model: enums.CommissionModel("WEIRD")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Checkout(context.Background(), tc.input)
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if gw.numCalls != 0 {
		t.Fatalf("gateway must not be called on validation failure, got %d calls", gw.numCalls)
	}
}

func TestCheckoutRejectsIneligibleStatus(t *testing.T) {
	tenantID := uuid.New()
	order := pendingOrder(tenantID)
	order.Status = enums.OrderStatusAssigned
	gw := &stubGateway{intent: &Intent{ClientSecret: "cs_test", Provider: "stripe"}}
	svc := newCheckoutService(t, &stubOrdersRepo{order: order}, gw)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		TenantID:       tenantID,
		OrderID:        1,
		AmountCents:    10000,
		CommissionRate: 0.1,
		Model:          enums.CommissionModelBridge,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if gw.numCalls != 0 {
		t.Fatal("gateway must not be called for ineligible orders")
	}
}

func TestCheckoutReturnsSplitAndSecret(t *testing.T) {
	tenantID := uuid.New()
	repo := &stubOrdersRepo{order: pendingOrder(tenantID)}
	gw := &stubGateway{intent: &Intent{ClientSecret: "cs_test_123", Provider: "stripe"}}
	svc := newCheckoutService(t, repo, gw)

	result, err := svc.Checkout(context.Background(), CheckoutInput{
		TenantID:       tenantID,
		OrderID:        1,
		AmountCents:    10000,
		CommissionRate: 0.10,
		Model:          enums.CommissionModelBridge,
	})
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}
	if result.ClientSecret != "cs_test_123" {
		t.Fatalf("unexpected client secret %q", result.ClientSecret)
	}
	if result.Split.PlatformCents != 1000 || result.Split.ProCents != 9000 {
		t.Fatalf("unexpected split %+v", result.Split)
	}

	if gw.lastReq.Metadata[MetadataKeyOrderID] != "1" {
		t.Fatalf("metadata order_id missing, got %v", gw.lastReq.Metadata)
	}
	if gw.lastReq.Metadata[MetadataKeyTenantID] != tenantID.String() {
		t.Fatalf("metadata tenant_id missing, got %v", gw.lastReq.Metadata)
	}
	if gw.lastReq.Metadata[MetadataKeyCommissionRate] != "0.1" {
		t.Fatalf("metadata commission_rate wrong, got %v", gw.lastReq.Metadata)
	}
	if gw.lastReq.Metadata[MetadataKeyModel] != "BRIDGE" {
		t.Fatalf("metadata model wrong, got %v", gw.lastReq.Metadata)
	}

	if repo.saved == nil || repo.saved.AmountCents != 10000 {
		t.Fatal("expected order amount persisted after intent creation")
	}
}

func TestCheckoutGatewayFailureMutatesNothing(t *testing.T) {
	tenantID := uuid.New()
	repo := &stubOrdersRepo{order: pendingOrder(tenantID)}
	gw := &stubGateway{err: errors.New("provider down")}
	svc := newCheckoutService(t, repo, gw)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		TenantID:       tenantID,
		OrderID:        1,
		AmountCents:    10000,
		CommissionRate: 0.1,
		Model:          enums.CommissionModelBridge,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if repo.saved != nil {
		t.Fatal("expected no order mutation on gateway failure")
	}
}

func TestCheckoutMissingOrder(t *testing.T) {
	svc := newCheckoutService(t, &stubOrdersRepo{findErr: gorm.ErrRecordNotFound}, &stubGateway{})

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		TenantID:       uuid.New(),
		OrderID:        9,
		AmountCents:    10000,
		CommissionRate: 0.1,
		Model:          enums.CommissionModelInternal,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
