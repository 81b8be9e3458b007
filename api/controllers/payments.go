package controllers

import (
	"net/http"

	"github.com/servana-app/servana-backend/api/middleware"
	"github.com/servana-app/servana-backend/api/responses"
	"github.com/servana-app/servana-backend/api/validators"
	"github.com/servana-app/servana-backend/internal/payments"
	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/logger"
)

type checkoutRequest struct {
	OrderID        int64   `json:"order_id" validate:"required,min=1"`
	AmountCents    int64   `json:"amount_cents" validate:"required,min=100"`
	CommissionRate float64 `json:"commission_rate" validate:"gte=0,lte=0.5"`
	Model          string  `json:"model" validate:"required"`
}

// Checkout creates a payment intent for an eligible order and returns the
// client secret with the commission split.
func Checkout(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		model, err := enums.ParseCommissionModel(req.Model)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown commission model"))
			return
		}

		result, err := svc.Checkout(ctx, payments.CheckoutInput{
			TenantID:       middleware.TenantIDFromContext(ctx),
			OrderID:        req.OrderID,
			AmountCents:    req.AmountCents,
			CommissionRate: req.CommissionRate,
			Model:          model,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
