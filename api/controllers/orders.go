package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/servana-app/servana-backend/api/middleware"
	"github.com/servana-app/servana-backend/api/responses"
	"github.com/servana-app/servana-backend/api/validators"
	"github.com/servana-app/servana-backend/internal/orders"
	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/logger"
	"github.com/servana-app/servana-backend/pkg/pagination"
)

type createOrderRequest struct {
	Category string `json:"category" validate:"required,min=2,max=120"`
	Area     string `json:"area" validate:"required,min=2,max=120"`
}

// OrderCreate opens a new service request for the calling client.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Create(ctx, orders.CreateInput{
			TenantID: middleware.TenantIDFromContext(ctx),
			Category: req.Category,
			Area:     req.Area,
			ClientID: middleware.UserIDFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderDetail fetches one order within the caller's tenant.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.ParsePathInt64(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Get(ctx, middleware.TenantIDFromContext(ctx), orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderList returns a cursor page of the tenant's orders, newest first.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.List(ctx, middleware.TenantIDFromContext(ctx), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"orders":      page.Orders,
			"next_cursor": page.NextCursor,
		})
	}
}

type transitionOrderRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderTransition moves an order through the fulfillment lifecycle.
func OrderTransition(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.ParsePathInt64(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req transitionOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status"))
			return
		}

		order, err := svc.Transition(ctx, orders.TransitionInput{
			TenantID:  middleware.TenantIDFromContext(ctx),
			OrderID:   orderID,
			To:        status,
			ActorID:   middleware.UserIDFromContext(ctx),
			ActorRole: middleware.RoleFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
