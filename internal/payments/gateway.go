package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	pkgsquare "github.com/servana-app/servana-backend/pkg/square"
	pkgstripe "github.com/servana-app/servana-backend/pkg/stripe"
)

// Metadata keys attached to every payment intent. The confirmation
// webhook has no other way to recover this context, so the gateway is
// treated as a store-and-forward channel for these three fields.
const (
	MetadataKeyOrderID        = "order_id"
	MetadataKeyTenantID       = "tenant_id"
	MetadataKeyCommissionRate = "commission_rate"
	MetadataKeyModel          = "model"
)

// IntentRequest is the provider-neutral input for creating a payment intent.
type IntentRequest struct {
	OrderID     int64
	AmountCents int64
	Currency    string
	Metadata    map[string]string
}

// Intent is the provider-neutral result. ClientSecret is opaque to this
// service; the mobile client hands it to the provider SDK.
type Intent struct {
	ClientSecret string
	Provider     string
}

// IntentGateway abstracts the payment provider behind checkout.
type IntentGateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

type stripeGateway struct {
	client *pkgstripe.Client
}

// NewStripeGateway adapts the Stripe client to the intent gateway contract.
func NewStripeGateway(client *pkgstripe.Client) (IntentGateway, error) {
	if client == nil {
		return nil, errors.New("stripe client required")
	}
	return &stripeGateway{client: client}, nil
}

func (g *stripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	intent, err := g.client.CreatePaymentIntent(ctx, pkgstripe.IntentCreateParams{
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, err
	}
	return &Intent{ClientSecret: intent.ClientSecret, Provider: "stripe"}, nil
}

type squareGateway struct {
	client *pkgsquare.Client
}

// NewSquareGateway adapts the Square client to the intent gateway
// contract. Square has no client-secret handshake; the payment id acts
// as the opaque token and the order id rides in ReferenceID.
func NewSquareGateway(client *pkgsquare.Client) (IntentGateway, error) {
	if client == nil {
		return nil, errors.New("square client required")
	}
	return &squareGateway{client: client}, nil
}

func (g *squareGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	payment, err := g.client.CreatePayment(ctx, pkgsquare.PaymentCreateParams{
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		SourceID:    "EXTERNAL",
		ReferenceID: strconv.FormatInt(req.OrderID, 10),
		Note: fmt.Sprintf("%s=%s %s=%s %s=%s",
			MetadataKeyTenantID, req.Metadata[MetadataKeyTenantID],
			MetadataKeyCommissionRate, req.Metadata[MetadataKeyCommissionRate],
			MetadataKeyModel, req.Metadata[MetadataKeyModel]),
	})
	if err != nil {
		return nil, err
	}
	id := ""
	if payment != nil && payment.GetID() != nil {
		id = *payment.GetID()
	}
	return &Intent{ClientSecret: id, Provider: "square"}, nil
}
