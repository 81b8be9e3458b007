package controllers

import (
	"net/http"
	"strings"

	"github.com/servana-app/servana-backend/api/middleware"
	"github.com/servana-app/servana-backend/api/responses"
	"github.com/servana-app/servana-backend/api/validators"
	"github.com/servana-app/servana-backend/internal/wallet"
	"github.com/servana-app/servana-backend/pkg/logger"
	"github.com/servana-app/servana-backend/pkg/pagination"
)

// WalletBalance reports the caller's escrow balance in cents.
func WalletBalance(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		balance, err := svc.Balance(ctx, middleware.TenantIDFromContext(ctx), middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"balance_cents": balance})
	}
}

// WalletHistory returns the caller's ledger entries, newest first.
func WalletHistory(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.History(ctx, middleware.TenantIDFromContext(ctx), middleware.UserIDFromContext(ctx), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"transactions": page.Transactions,
			"next_cursor":  page.NextCursor,
		})
	}
}
