package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/servana-app/servana-backend/api/responses"
	"github.com/servana-app/servana-backend/internal/payments"
	paymentwebhook "github.com/servana-app/servana-backend/internal/webhooks/payment"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/logger"
)

type squareClient interface {
	SigningSecret() string
}

// squareWebhookEvent is the subset of the Square webhook payload the
// reconcile path needs.
type squareWebhookEvent struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Data    struct {
		Object struct {
			Payment struct {
				ID          string `json:"id"`
				Status      string `json:"status"`
				ReferenceID string `json:"reference_id"`
				Note        string `json:"note"`
				AmountMoney struct {
					Amount int64 `json:"amount"`
				} `json:"amount_money"`
			} `json:"payment"`
		} `json:"object"`
	} `json:"data"`
}

// SquareWebhook verifies Square payment events and translates them into the
// same reconcile path as Stripe. A COMPLETED payment maps to the success
// event type; anything else passes through and is acknowledged unprocessed.
func SquareWebhook(svc PaymentReconciler, client squareClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "square client unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Square-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "square signature missing"))
			return
		}
		if !validateSquareSignature(payload, client.SigningSecret(), sigHeader) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid square signature"))
			return
		}

		var native squareWebhookEvent
		if err := json.Unmarshal(payload, &native); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event"))
			return
		}

		event := translateSquareEvent(native)
		tenantID, err := tenantFromMetadata(event.Metadata)
		if err != nil && event.Type == paymentwebhook.EventTypeSucceeded {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Handle(ctx, "square", tenantID, event)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// translateSquareEvent maps the native payload onto the neutral envelope.
// Square has no intent metadata, so the checkout context rides in the
// payment's reference id (order) and note (tenant, rate, model).
func translateSquareEvent(native squareWebhookEvent) paymentwebhook.Event {
	payment := native.Data.Object.Payment

	eventType := native.Type
	if native.Type == "payment.updated" && payment.Status == "COMPLETED" {
		eventType = paymentwebhook.EventTypeSucceeded
	}

	metadata := parseNotePairs(payment.Note)
	if payment.ReferenceID != "" {
		metadata[payments.MetadataKeyOrderID] = payment.ReferenceID
	}

	eventID := strings.TrimSpace(native.EventID)
	if eventID == "" {
		eventID = payment.ID
	}

	return paymentwebhook.Event{
		ID:          eventID,
		Type:        eventType,
		AmountCents: payment.AmountMoney.Amount,
		Metadata:    metadata,
	}
}

func parseNotePairs(note string) map[string]string {
	pairs := map[string]string{}
	for _, field := range strings.Fields(note) {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			continue
		}
		pairs[key] = value
	}
	return pairs
}

func validateSquareSignature(payload []byte, secret, header string) bool {
	if header == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}
