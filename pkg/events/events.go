package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type names a domain event published on the domain topic.
type Type string

const (
	TypeOrderPaid             Type = "order.paid"
	TypeOrderBridgeDispatched Type = "order.bridge_dispatched"
	TypeTicketEscalated       Type = "ticket.escalated"
	TypeFeatureFlagChanged    Type = "feature_flag.changed"
)

// Envelope is the stable payload structure published for every domain event.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	Type       Type            `json:"type"`
	TenantID   string          `json:"tenantId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// OrderPaid is emitted when a payment confirmation settles an order.
type OrderPaid struct {
	OrderID        int64  `json:"orderId"`
	AmountCents    int64  `json:"amountCents"`
	CommissionRate string `json:"commissionRate"`
	Model          string `json:"model"`
}

// OrderBridgeDispatched is emitted when an order is forwarded to a partner.
type OrderBridgeDispatched struct {
	OrderID     int64  `json:"orderId"`
	PartnerName string `json:"partnerName"`
	Category    string `json:"category"`
	Area        string `json:"area"`
}

// TicketEscalated is emitted when a support ticket is flagged for a human.
type TicketEscalated struct {
	TicketID string `json:"ticketId"`
	Category string `json:"category"`
}

// FeatureFlagChanged is emitted when an admin toggles a tenant flag.
type FeatureFlagChanged struct {
	Flag    string `json:"flag"`
	Enabled bool   `json:"enabled"`
	AdminID int64  `json:"adminId"`
}

// NewEnvelope wraps a payload in the versioned envelope.
func NewEnvelope(eventType Type, tenantID uuid.UUID, now time.Time, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Version:    1,
		EventID:    uuid.NewString(),
		Type:       eventType,
		TenantID:   tenantID.String(),
		OccurredAt: now.UTC(),
		Data:       data,
	}, nil
}
