package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servana-app/servana-backend/internal/orders"
	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/events"
	"github.com/servana-app/servana-backend/pkg/logger"
)

// partnerListSource tags contacts that came from the static directory.
const partnerListSource = "partner_list"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, eventType events.Type, tenantID uuid.UUID, payload any)
}

// Contact is the partner contact handed back to the caller, including a
// messaging deep link built from the phone number.
type Contact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	WhatsApp string `json:"whatsapp"`
	Source   string `json:"source"`
}

// Result is the dispatch response bundle.
type Result struct {
	OrderID     int64             `json:"orderId"`
	Status      enums.OrderStatus `json:"status"`
	ProContact  Contact           `json:"proContact"`
	Commission  string            `json:"commission"`
	PaymentLink string            `json:"paymentLink"`
}

// Service routes an order to a manually curated partner when automatic
// matching has no answer. Admin-only; role enforcement lives in the
// transport layer.
type Service interface {
	Dispatch(ctx context.Context, tenantID uuid.UUID, orderID int64) (*Result, error)
}

// ServiceParams lists the dependencies for the bridge dispatcher.
type ServiceParams struct {
	Directory         *Directory
	OrdersRepo        orders.Repository
	TransactionRunner txRunner
	Events            eventEmitter
	Logger            *logger.Logger
	CommissionRate    float64
	PaymentLinkFmt    string
}

type service struct {
	directory      *Directory
	ordersRepo     orders.Repository
	tx             txRunner
	events         eventEmitter
	logg           *logger.Logger
	commissionRate float64
	paymentLinkFmt string
}

// NewService builds the bridge dispatcher.
func NewService(params ServiceParams) (Service, error) {
	if params.Directory == nil {
		return nil, errors.New("partner directory required")
	}
	if params.OrdersRepo == nil {
		return nil, errors.New("orders repository required")
	}
	if params.TransactionRunner == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	rate := params.CommissionRate
	if rate <= 0 {
		rate = enums.BridgeRateCeiling
	}
	linkFmt := params.PaymentLinkFmt
	if linkFmt == "" {
		linkFmt = "servana://checkout/order/%d"
	}
	return &service{
		directory:      params.Directory,
		ordersRepo:     params.OrdersRepo,
		tx:             params.TransactionRunner,
		events:         params.Events,
		logg:           params.Logger,
		commissionRate: rate,
		paymentLinkFmt: linkFmt,
	}, nil
}

func (s *service) Dispatch(ctx context.Context, tenantID uuid.UUID, orderID int64) (*Result, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var result *Result
	var dispatched events.OrderBridgeDispatched
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.ordersRepo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching order")
		}

		partner := s.directory.Find(order.Category, order.Area)
		if partner == nil {
			// Terminal for this request; the order is left untouched.
			return pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("no partner for %s in %s", order.Category, order.Area))
		}

		rate := s.commissionRate
		order.Status = enums.OrderStatusManualForwarding
		order.BridgeContactName = &partner.Name
		order.BridgeContactPhone = &partner.Phone
		source := partnerListSource
		order.BridgeContactSource = &source
		order.BridgeCommissionRate = &rate

		if _, err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
		}

		result = &Result{
			OrderID: order.ID,
			Status:  order.Status,
			ProContact: Contact{
				Name:     partner.Name,
				Phone:    partner.Phone,
				WhatsApp: whatsAppLink(partner.Phone),
				Source:   source,
			},
			Commission:  fmt.Sprintf("%.0f%%", rate*100),
			PaymentLink: fmt.Sprintf(s.paymentLinkFmt, order.ID),
		}
		dispatched = events.OrderBridgeDispatched{
			OrderID:     order.ID,
			PartnerName: partner.Name,
			Category:    order.Category,
			Area:        order.Area,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Emit(ctx, events.TypeOrderBridgeDispatched, tenantID, dispatched)
	}

	logCtx := s.logg.WithOrderID(ctx, result.OrderID)
	s.logg.Info(logCtx, "order forwarded to bridge partner")
	return result, nil
}

// whatsAppLink turns a partner phone into a wa.me deep link. The wa.me
// format wants the number without the leading "+".
func whatsAppLink(phone string) string {
	return "https://wa.me/" + strings.TrimPrefix(strings.TrimSpace(phone), "+")
}
