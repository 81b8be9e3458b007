package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/servana-app/servana-backend/api/middleware"
	"github.com/servana-app/servana-backend/api/responses"
	"github.com/servana-app/servana-backend/api/validators"
	"github.com/servana-app/servana-backend/internal/tickets"
	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/logger"
)

type openTicketRequest struct {
	Category string          `json:"category" validate:"required"`
	Summary  string          `json:"summary" validate:"required,min=3,max=500"`
	ChatLog  json.RawMessage `json:"chat_log,omitempty"`
}

// TicketOpen files a support case for the caller.
func TicketOpen(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req openTicketRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		category, err := enums.ParseTicketCategory(req.Category)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown ticket category"))
			return
		}

		ticket, err := svc.Open(ctx, tickets.OpenInput{
			TenantID: middleware.TenantIDFromContext(ctx),
			UserID:   middleware.UserIDFromContext(ctx),
			Role:     middleware.RoleFromContext(ctx),
			Category: category,
			Summary:  req.Summary,
			ChatLog:  req.ChatLog,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ticket)
	}
}

// TicketDetail fetches a ticket by its year-scoped id.
func TicketDetail(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ticketID := strings.TrimSpace(chi.URLParam(r, "ticketID"))
		if ticketID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ticket id is required"))
			return
		}

		ticket, err := svc.Get(ctx, middleware.TenantIDFromContext(ctx), ticketID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, ticket)
	}
}

// TicketList serves the escalation queue. Only the pending-escalated view
// exists today, selected with ?escalated=pending.
func TicketList(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if strings.TrimSpace(r.URL.Query().Get("escalated")) != "pending" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "escalated=pending is the only supported filter"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListPendingEscalated(ctx, middleware.TenantIDFromContext(ctx), limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"tickets": list})
	}
}

type resolveTicketRequest struct {
	Status string `json:"status" validate:"required"`
}

// TicketResolve closes a ticket with an AI or human resolution status.
func TicketResolve(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ticketID := strings.TrimSpace(chi.URLParam(r, "ticketID"))
		if ticketID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ticket id is required"))
			return
		}

		var req resolveTicketRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		status, err := enums.ParseTicketStatus(req.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown ticket status"))
			return
		}

		ticket, err := svc.Resolve(ctx, tickets.ResolveInput{
			TenantID: middleware.TenantIDFromContext(ctx),
			TicketID: ticketID,
			Status:   status,
			AdminID:  middleware.UserIDFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, ticket)
	}
}
