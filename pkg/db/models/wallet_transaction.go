package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/servana-app/servana-backend/pkg/enums"
)

// WalletTransaction is an immutable ledger entry. Rows are only ever
// inserted; the ledger is the source of truth for escrow state and order
// status is a projection of it.
type WalletTransaction struct {
	TenantID       uuid.UUID                   `gorm:"column:tenant_id;type:uuid;primaryKey" json:"tenant_id"`
	ID             int64                       `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	OrderID        int64                       `gorm:"column:order_id;not null;index" json:"order_id"`
	UserID         int64                       `gorm:"column:user_id;not null;index" json:"user_id"`
	AmountCents    int64                       `gorm:"column:amount_cents;not null" json:"amount_cents"`
	Type           enums.WalletTransactionType `gorm:"column:type;type:wallet_transaction_type;not null" json:"type"`
	Model          enums.CommissionModel       `gorm:"column:model;type:commission_model;not null" json:"model"`
	CommissionRate *float64                    `gorm:"column:commission_rate" json:"commission_rate,omitempty"`
	CreatedAt      time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName fixes the table name regardless of gorm pluralization rules.
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
