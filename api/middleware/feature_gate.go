package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/servana-app/servana-backend/api/responses"
	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/logger"
)

type flagChecker interface {
	IsEnabled(ctx context.Context, tenantID uuid.UUID, name enums.FeatureFlag) (bool, error)
}

// FeatureGate rejects requests for a module an operator has switched off
// for the caller's tenant. A flag read failure closes the gate rather than
// failing open.
func FeatureGate(checker flagChecker, flag enums.FeatureFlag, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if checker == nil {
				next.ServeHTTP(w, r)
				return
			}
			enabled, err := checker.IsEnabled(ctx, TenantIDFromContext(ctx), flag)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read feature flag"))
				return
			}
			if !enabled {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, string(flag)+" is currently disabled"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
