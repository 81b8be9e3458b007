package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/servana-app/servana-backend/api/middleware"
	"github.com/servana-app/servana-backend/api/responses"
	"github.com/servana-app/servana-backend/api/validators"
	"github.com/servana-app/servana-backend/internal/bridge"
	"github.com/servana-app/servana-backend/pkg/logger"
)

// BridgeDispatch manually forwards an order to a vetted partner when no
// in-app professional picked it up.
func BridgeDispatch(svc bridge.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.ParsePathInt64(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Dispatch(ctx, middleware.TenantIDFromContext(ctx), orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
