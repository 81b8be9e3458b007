package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servana-app/servana-backend/internal/orders"
	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
)

const (
	// MinAmountCents is the smallest chargeable amount.
	MinAmountCents = 100
	// MaxCommissionRate bounds the rate the internal router may choose.
	MaxCommissionRate = 0.5
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CheckoutInput carries one checkout request.
type CheckoutInput struct {
	TenantID       uuid.UUID
	OrderID        int64
	AmountCents    int64
	CommissionRate float64
	Model          enums.CommissionModel
}

// CheckoutResult bundles the client secret with the computed split.
type CheckoutResult struct {
	OrderID      int64  `json:"order_id"`
	ClientSecret string `json:"client_secret"`
	Provider     string `json:"provider"`
	Split        Split  `json:"split"`
}

// Service runs checkout: validates order state, computes the split, and
// asks the gateway for a payment intent.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}

// ServiceParams lists the dependencies for the payments service.
type ServiceParams struct {
	OrdersRepo        orders.Repository
	Gateway           IntentGateway
	TransactionRunner txRunner
	Currency          string
	IntentTimeout     time.Duration
}

type service struct {
	ordersRepo    orders.Repository
	gateway       IntentGateway
	tx            txRunner
	currency      string
	intentTimeout time.Duration
}

// NewService builds the payments service.
func NewService(params ServiceParams) (Service, error) {
	if params.OrdersRepo == nil {
		return nil, errors.New("orders repository required")
	}
	if params.Gateway == nil {
		return nil, errors.New("intent gateway required")
	}
	if params.TransactionRunner == nil {
		return nil, errors.New("transaction runner required")
	}
	currency := params.Currency
	if currency == "" {
		currency = "EUR"
	}
	timeout := params.IntentTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &service{
		ordersRepo:    params.OrdersRepo,
		gateway:       params.Gateway,
		tx:            params.TransactionRunner,
		currency:      currency,
		intentTimeout: timeout,
	}, nil
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.AmountCents < MinAmountCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("amount must be at least %d minor units", MinAmountCents))
	}
	if input.CommissionRate < 0 || input.CommissionRate > MaxCommissionRate {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "commission rate must be between 0 and 0.5")
	}
	if !input.Model.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown commission model")
	}

	order, err := s.ordersRepo.FindByID(ctx, input.TenantID, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching order")
	}
	if !order.Status.IsPaymentEligible() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not payment eligible")
	}

	split := CalculateSplit(input.AmountCents, input.CommissionRate, input.Model)

	// The gateway call happens before any order mutation so a failed or
	// timed-out checkout leaves no partial state behind.
	intentCtx, cancel := context.WithTimeout(ctx, s.intentTimeout)
	defer cancel()
	intent, err := s.gateway.CreateIntent(intentCtx, IntentRequest{
		OrderID:     order.ID,
		AmountCents: input.AmountCents,
		Currency:    s.currency,
		Metadata: map[string]string{
			MetadataKeyOrderID:        strconv.FormatInt(order.ID, 10),
			MetadataKeyTenantID:       input.TenantID.String(),
			MetadataKeyCommissionRate: strconv.FormatFloat(input.CommissionRate, 'f', -1, 64),
			MetadataKeyModel:          input.Model.String(),
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment intent")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.ordersRepo.WithTx(tx)
		current, err := repo.FindByIDForUpdate(ctx, input.TenantID, input.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refetching order")
		}
		current.AmountCents = input.AmountCents
		if _, err := repo.Save(ctx, current); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order amount")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		OrderID:      order.ID,
		ClientSecret: intent.ClientSecret,
		Provider:     intent.Provider,
		Split:        split,
	}, nil
}
