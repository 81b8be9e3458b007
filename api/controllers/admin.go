package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/servana-app/servana-backend/api/middleware"
	"github.com/servana-app/servana-backend/api/responses"
	"github.com/servana-app/servana-backend/api/validators"
	"github.com/servana-app/servana-backend/internal/audit"
	"github.com/servana-app/servana-backend/internal/flags"
	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/logger"
)

// FlagList returns every module killswitch with its effective state.
func FlagList(svc flags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		list, err := svc.List(ctx, middleware.TenantIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"flags": list})
	}
}

type toggleFlagRequest struct {
	Enabled bool `json:"enabled"`
}

// FlagToggle flips one killswitch and records the change in the audit log.
func FlagToggle(svc flags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		name, err := enums.ParseFeatureFlag(strings.TrimSpace(chi.URLParam(r, "name")))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown feature flag"))
			return
		}

		var req toggleFlagRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		flag, err := svc.Toggle(ctx, flags.ToggleInput{
			TenantID: middleware.TenantIDFromContext(ctx),
			Name:     name,
			Enabled:  req.Enabled,
			AdminID:  middleware.UserIDFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, flag)
	}
}

// AuditList returns the most recent admin actions for the tenant.
func AuditList(repo audit.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entries, err := repo.List(ctx, middleware.TenantIDFromContext(ctx), limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit log"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"entries": entries})
	}
}
