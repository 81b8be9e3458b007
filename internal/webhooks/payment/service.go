package paymentwebhook

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servana-app/servana-backend/internal/orders"
	"github.com/servana-app/servana-backend/internal/payments"
	"github.com/servana-app/servana-backend/internal/wallet"
	"github.com/servana-app/servana-backend/pkg/db/models"
	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/events"
	"github.com/servana-app/servana-backend/pkg/logger"
	"github.com/servana-app/servana-backend/pkg/metrics"
)

// FallbackCommissionRate is applied when the event metadata carries no
// rate. Defaulting is deliberate and logged; it is not silent data loss.
const FallbackCommissionRate = enums.InternalRateCeiling

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, eventType events.Type, tenantID uuid.UUID, payload any)
}

type duplicateGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// ServiceParams lists the reconciler's dependencies.
type ServiceParams struct {
	OrdersRepo        orders.Repository
	WalletRepo        wallet.Repository
	TransactionRunner txRunner
	Guard             duplicateGuard
	Events            eventEmitter
	Logger            *logger.Logger
	Metrics           *metrics.WebhookMetrics
}

// Service reconciles asynchronous payment confirmations with durable
// order and ledger state. Deliveries are at-least-once and possibly
// duplicated; the contract is one state transition and one ledger entry
// no matter how many times the same confirmation arrives.
type Service struct {
	ordersRepo orders.Repository
	walletRepo wallet.Repository
	tx         txRunner
	guard      duplicateGuard
	events     eventEmitter
	logg       *logger.Logger
	metrics    *metrics.WebhookMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrdersRepo == nil {
		return nil, errors.New("orders repository required")
	}
	if params.WalletRepo == nil {
		return nil, errors.New("wallet repository required")
	}
	if params.TransactionRunner == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &Service{
		ordersRepo: params.OrdersRepo,
		walletRepo: params.WalletRepo,
		tx:         params.TransactionRunner,
		guard:      params.Guard,
		events:     params.Events,
		logg:       params.Logger,
		metrics:    params.Metrics,
	}, nil
}

// Handle reconciles one provider event. Business conditions (irrelevant
// type, missing order, already processed) acknowledge successfully; only
// a malformed event returns an error, since that is the one case where
// the sender retrying could never help and must be told so.
func (s *Service) Handle(ctx context.Context, provider string, tenantID uuid.UUID, event Event) (*Result, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveDuration(provider, time.Since(start))
	}()

	if tenantID == uuid.Nil {
		s.metrics.IncOutcome(provider, metrics.OutcomeMalformed)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}

	if event.Type != EventTypeSucceeded {
		s.metrics.IncOutcome(provider, metrics.OutcomeIgnored)
		return &Result{Outcome: OutcomeIgnored}, nil
	}

	orderID, err := orderIDFromMetadata(event.Metadata)
	if err != nil {
		s.metrics.IncOutcome(provider, metrics.OutcomeMalformed)
		return nil, err
	}

	// Fast-path duplicate drop. A guard failure is never fatal; the
	// status check below still holds the invariant.
	marked := false
	if s.guard != nil && event.ID != "" {
		seen, guardErr := s.guard.CheckAndMark(ctx, event.ID)
		if guardErr != nil {
			s.logg.Warn(ctx, "webhook idempotency guard unavailable")
		} else if seen {
			s.metrics.IncOutcome(provider, metrics.OutcomeDuplicate)
			return &Result{Outcome: OutcomeDuplicate, OrderID: orderID}, nil
		} else {
			marked = true
		}
	}

	rate, rateDefaulted := rateFromMetadata(event.Metadata)
	model := modelFromMetadata(event.Metadata)

	result := &Result{OrderID: orderID}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.ordersRepo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// A failure status here would only trigger a provider
				// retry storm for a condition that cannot self-heal.
				result.Outcome = OutcomeOrphan
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching order")
		}

		if !order.Status.IsPaymentEligible() {
			result.Outcome = OutcomeDuplicate
			return nil
		}

		order.Status = enums.OrderStatusAssigned
		if _, err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}

		entry := &models.WalletTransaction{
			TenantID:       tenantID,
			OrderID:        order.ID,
			UserID:         order.ClientID,
			AmountCents:    event.AmountCents,
			Type:           enums.WalletTransactionTypeEscrowIn,
			Model:          model,
			CommissionRate: &rate,
		}
		if _, err := s.walletRepo.WithTx(tx).Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending escrow entry")
		}

		result.Outcome = OutcomeProcessed
		return nil
	})
	if err != nil {
		// Release the fast-path mark so the provider's retry gets
		// another shot at a transient failure.
		if marked {
			if delErr := s.guard.Delete(ctx, event.ID); delErr != nil {
				s.logg.Warn(ctx, "failed to release idempotency mark")
			}
		}
		s.metrics.IncOutcome(provider, metrics.OutcomeError)
		return nil, err
	}

	switch result.Outcome {
	case OutcomeProcessed:
		s.metrics.IncOutcome(provider, metrics.OutcomeProcessed)
		logCtx := s.logg.WithOrderID(ctx, orderID)
		if rateDefaulted {
			s.logg.Warn(logCtx, "commission rate missing from event metadata, using fallback")
		}
		s.logg.Info(logCtx, "payment confirmed, order assigned and escrow recorded")
		if s.events != nil {
			s.events.Emit(ctx, events.TypeOrderPaid, tenantID, events.OrderPaid{
				OrderID:        orderID,
				AmountCents:    event.AmountCents,
				CommissionRate: strconv.FormatFloat(rate, 'f', -1, 64),
				Model:          model.String(),
			})
		}
	case OutcomeOrphan:
		s.metrics.IncOutcome(provider, metrics.OutcomeOrphan)
		s.logg.Warn(ctx, "payment confirmation for unknown order acknowledged")
	case OutcomeDuplicate:
		s.metrics.IncOutcome(provider, metrics.OutcomeDuplicate)
	}

	return result, nil
}

func orderIDFromMetadata(metadata map[string]string) (int64, error) {
	raw, ok := metadata[payments.MetadataKeyOrderID]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "event metadata missing order_id")
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "event metadata order_id is not a valid id")
	}
	return id, nil
}

func rateFromMetadata(metadata map[string]string) (float64, bool) {
	raw, ok := metadata[payments.MetadataKeyCommissionRate]
	if !ok || strings.TrimSpace(raw) == "" {
		return FallbackCommissionRate, true
	}
	rate, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || rate < 0 || rate > payments.MaxCommissionRate {
		return FallbackCommissionRate, true
	}
	return rate, false
}

func modelFromMetadata(metadata map[string]string) enums.CommissionModel {
	model, err := enums.ParseCommissionModel(metadata[payments.MetadataKeyModel])
	if err != nil {
		return enums.CommissionModelInternal
	}
	return model
}
