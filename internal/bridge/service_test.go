package bridge

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/servana-app/servana-backend/internal/orders"
	"github.com/servana-app/servana-backend/pkg/db/models"
	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/events"
	"github.com/servana-app/servana-backend/pkg/logger"
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

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type recordingEmitter struct {
	emitted []events.Type
}

func (r *recordingEmitter) Emit(ctx context.Context, eventType events.Type, tenantID uuid.UUID, payload any) {
	r.emitted = append(r.emitted, eventType)
}

func testDirectory() *Directory {
	return NewDirectory(map[[2]string][]Partner{
		{"Canalização", "Almada"}: {{Name: "Aqua Rápida", Phone: "+351911111111"}},
	})
}

func newDispatcher(t *testing.T, repo orders.Repository, emitter eventEmitter) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Directory:         testDirectory(),
		OrdersRepo:        repo,
		TransactionRunner: stubTxRunner{},
		Events:            emitter,
		Logger:            logg,
		CommissionRate:    0.10,
		PaymentLinkFmt:    "servana://checkout/order/%d",
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestDispatchForwardsOrder(t *testing.T) {
	tenantID := uuid.New()
	repo := &stubOrdersRepo{order: &models.Order{
		TenantID: tenantID,
		ID:       7,
		Category: "Canalização",
		Area:     "Almada",
		ClientID: 123,
		Status:   enums.OrderStatusPending,
	}}
	emitter := &recordingEmitter{}
	svc := newDispatcher(t, repo, emitter)

	result, err := svc.Dispatch(context.Background(), tenantID, 7)
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if result.Status != enums.OrderStatusManualForwarding {
		t.Fatalf("expected MANUAL_FORWARDING, got %s", result.Status)
	}
	if result.ProContact.Name != "Aqua Rápida" {
		t.Fatalf("unexpected partner %q", result.ProContact.Name)
	}
	if result.ProContact.WhatsApp != "https://wa.me/351911111111" {
		t.Fatalf("unexpected deep link %q", result.ProContact.WhatsApp)
	}
	if result.ProContact.Source != "partner_list" {
		t.Fatalf("unexpected source %q", result.ProContact.Source)
	}
	if result.Commission != "10%" {
		t.Fatalf("unexpected commission label %q", result.Commission)
	}
	if result.PaymentLink != "servana://checkout/order/7" {
		t.Fatalf("unexpected payment link %q", result.PaymentLink)
	}

	if repo.saved == nil {
		t.Fatal("expected order saved")
	}
	if repo.saved.BridgeCommissionRate == nil || *repo.saved.BridgeCommissionRate != 0.10 {
		t.Fatal("expected 10% bridge rate persisted")
	}
	if len(emitter.emitted) != 1 || emitter.emitted[0] != events.TypeOrderBridgeDispatched {
		t.Fatalf("expected bridge dispatch event, got %v", emitter.emitted)
	}
}

func TestDispatchAppliesPromoRateEveryTime(t *testing.T) {
	// The 10% rate is applied on every dispatch; nothing tracks a
	// client's first use.
	tenantID := uuid.New()
	repo := &stubOrdersRepo{order: &models.Order{
		TenantID: tenantID,
		ID:       7,
		Category: "Canalização",
		Area:     "Almada",
		ClientID: 123,
		Status:   enums.OrderStatusPending,
	}}
	svc := newDispatcher(t, repo, nil)

	for i := 0; i < 3; i++ {
		result, err := svc.Dispatch(context.Background(), tenantID, 7)
		if err != nil {
			t.Fatalf("dispatch %d returned error: %v", i, err)
		}
		if result.Commission != "10%" {
			t.Fatalf("dispatch %d: expected 10%%, got %q", i, result.Commission)
		}
	}
}

func TestDispatchOrderNotFound(t *testing.T) {
	svc := newDispatcher(t, &stubOrdersRepo{findErr: gorm.ErrRecordNotFound}, nil)

	_, err := svc.Dispatch(context.Background(), uuid.New(), 99)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDispatchPartnerNotFoundLeavesOrderUntouched(t *testing.T) {
	tenantID := uuid.New()
	repo := &stubOrdersRepo{order: &models.Order{
		TenantID: tenantID,
		ID:       8,
		Category: "Jardinagem",
		Area:     "Faro",
		ClientID: 123,
		Status:   enums.OrderStatusPending,
	}}
	svc := newDispatcher(t, repo, nil)

	_, err := svc.Dispatch(context.Background(), tenantID, 8)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.saved != nil {
		t.Fatal("expected no save when partner missing")
	}
	if repo.order.Status != enums.OrderStatusPending {
		t.Fatalf("expected status unchanged, got %s", repo.order.Status)
	}
}
