package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servana-app/servana-backend/pkg/db/models"
	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order lifecycle operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, tenantID uuid.UUID, id int64) (*models.Order, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) (*Page, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
}

// CreateInput captures the fields a client supplies when opening an order.
type CreateInput struct {
	TenantID uuid.UUID
	Category string
	Area     string
	ClientID int64
}

// TransitionInput moves an assigned order onward through fulfillment.
type TransitionInput struct {
	TenantID  uuid.UUID
	OrderID   int64
	To        enums.OrderStatus
	ActorID   int64
	ActorRole enums.MemberRole
}

// Page is one cursor page of orders.
type Page struct {
	Orders     []models.Order
	NextCursor string
}

type service struct {
	repo Repository
	tx   txRunner
}

// ServiceParams lists the dependencies for the orders service.
type ServiceParams struct {
	Repository        Repository
	TransactionRunner txRunner
}

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, errors.New("orders repository required")
	}
	if params.TransactionRunner == nil {
		return nil, errors.New("transaction runner required")
	}
	return &service{repo: params.Repository, tx: params.TransactionRunner}, nil
}

// fulfillmentTransitions lists where an order may move once payment has
// settled. The reconciler owns the move into ASSIGNED; everything before
// that is driven by checkout and bridge dispatch, not this table.
var fulfillmentTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusAssigned: {
		enums.OrderStatusCompleted,
		enums.OrderStatusDispute,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusDispute: {
		enums.OrderStatusCompleted,
		enums.OrderStatusCancelled,
	},
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category required")
	}
	if strings.TrimSpace(input.Area) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "area required")
	}
	if input.ClientID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}

	order := &models.Order{
		TenantID: input.TenantID,
		Category: strings.TrimSpace(input.Category),
		Area:     strings.TrimSpace(input.Area),
		ClientID: input.ClientID,
		Status:   enums.OrderStatusPending,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.WithTx(tx).Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}
		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, tenantID uuid.UUID, id int64) (*models.Order, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) (*Page, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.List(ctx, tenantID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}

	page := &Page{Orders: rows}
	if len(rows) > limit {
		page.Orders = rows[:limit]
		last := page.Orders[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.To.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, input.TenantID, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching order")
		}

		if !transitionAllowed(order.Status, input.To) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot move to requested status")
		}
		if input.To == enums.OrderStatusDispute && !input.ActorRole.IsElevated() && order.ClientID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the order's client or an admin may open a dispute")
		}

		order.Status = input.To
		updated, err = repo.Save(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	for _, candidate := range fulfillmentTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
