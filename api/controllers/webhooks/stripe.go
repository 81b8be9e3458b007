package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/servana-app/servana-backend/api/responses"
	"github.com/servana-app/servana-backend/internal/payments"
	paymentwebhook "github.com/servana-app/servana-backend/internal/webhooks/payment"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/logger"
)

type stripeClient interface {
	SigningSecret() string
}

// PaymentReconciler is the reconcile entry point shared by both provider
// controllers.
type PaymentReconciler interface {
	Handle(ctx context.Context, provider string, tenantID uuid.UUID, event paymentwebhook.Event) (*paymentwebhook.Result, error)
}

// StripeWebhook verifies and translates Stripe confirmation events into the
// provider-neutral reconcile path.
func StripeWebhook(svc PaymentReconciler, client stripeClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stripe client unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "stripe signature missing"))
			return
		}

		// Events arrive with the account's API version, not the SDK pin;
		// only the signature decides acceptance.
		event, err := webhook.ConstructEventWithOptions(payload, sigHeader, client.SigningSecret(),
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "verify signature"))
			return
		}

		var intent struct {
			Amount   int64             `json:"amount"`
			Metadata map[string]string `json:"metadata"`
		}
		if event.Data != nil && len(event.Data.Raw) > 0 {
			if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event object"))
				return
			}
		}

		tenantID, err := tenantFromMetadata(intent.Metadata)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Handle(ctx, "stripe", tenantID, paymentwebhook.Event{
			ID:          event.ID,
			Type:        string(event.Type),
			AmountCents: intent.Amount,
			Metadata:    intent.Metadata,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// tenantFromMetadata resolves the tenant the intent was minted for. The
// value is stamped onto every intent at checkout; an event without it
// cannot be routed and is malformed in the same sense as a missing
// order id.
func tenantFromMetadata(metadata map[string]string) (uuid.UUID, error) {
	raw, ok := metadata[payments.MetadataKeyTenantID]
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "event metadata missing tenant id")
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil || tenantID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "event metadata carries invalid tenant id")
	}
	return tenantID, nil
}
