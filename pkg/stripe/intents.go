package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
)

// IntentCreateParams carries the inputs for a Stripe payment intent.
type IntentCreateParams struct {
	AmountCents int64
	Currency    string
	Metadata    map[string]string
}

// CreatePaymentIntent creates an intent and returns the raw Stripe object.
// The metadata map is forwarded untouched; the asynchronous confirmation
// webhook is the only way that context comes back.
func (c *Client) CreatePaymentIntent(ctx context.Context, params IntentCreateParams) (*stripe.PaymentIntent, error) {
	if c == nil || c.api == nil {
		return nil, errors.New("stripe client not initialized")
	}
	if params.AmountCents <= 0 {
		return nil, errors.New("amount must be positive")
	}

	currency := strings.ToLower(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = "eur"
	}

	req := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(params.AmountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if len(params.Metadata) > 0 {
		req.Metadata = params.Metadata
	}

	intent, err := c.api.V1PaymentIntents.Create(ctx, req)
	if err != nil {
		c.logIntentError(ctx, err)
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	if c.logger != nil {
		logCtx := c.logger.WithFields(ctx, map[string]any{
			"intent_id": intent.ID,
			"amount":    params.AmountCents,
		})
		c.logger.Info(logCtx, "stripe payment intent created")
	}
	return intent, nil
}

func (c *Client) logIntentError(ctx context.Context, err error) {
	if c == nil || c.logger == nil {
		return
	}
	c.logger.Error(ctx, "stripe create payment intent", err)
}
