package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/servana-app/servana-backend/pkg/enums"
)

// Order is a service request moving through the payment/escrow lifecycle.
// IDs are sequential per tenant; the pair (tenant_id, id) is the identity.
// Amounts are integer minor units, never floating point. Orders are kept
// forever for audit; there is no delete path.
type Order struct {
	TenantID    uuid.UUID         `gorm:"column:tenant_id;type:uuid;primaryKey" json:"tenant_id"`
	ID          int64             `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Category    string            `gorm:"column:category;not null" json:"category"`
	Area        string            `gorm:"column:area;not null" json:"area"`
	ClientID    int64             `gorm:"column:client_id;not null" json:"client_id"`
	ProID       *int64            `gorm:"column:pro_id" json:"pro_id,omitempty"`
	Status      enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'PENDING'" json:"status"`
	AmountCents int64             `gorm:"column:amount_cents;not null;default:0" json:"amount_cents"`

	// Manual bridge attachments, set only by bridge dispatch.
	BridgeContactName    *string  `gorm:"column:bridge_contact_name" json:"bridge_contact_name,omitempty"`
	BridgeContactPhone   *string  `gorm:"column:bridge_contact_phone" json:"bridge_contact_phone,omitempty"`
	BridgeContactSource  *string  `gorm:"column:bridge_contact_source" json:"bridge_contact_source,omitempty"`
	BridgeCommissionRate *float64 `gorm:"column:bridge_commission_rate" json:"bridge_commission_rate,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName fixes the table name regardless of gorm pluralization rules.
func (Order) TableName() string {
	return "orders"
}
