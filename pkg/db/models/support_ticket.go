package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/servana-app/servana-backend/pkg/enums"
)

// SupportTicket records an assistant-escalated or user-opened support case.
// Tickets carry a compliance retention timestamp set at creation.
type SupportTicket struct {
	TenantID       uuid.UUID            `gorm:"column:tenant_id;type:uuid;primaryKey" json:"tenant_id"`
	ID             string               `gorm:"column:id;primaryKey" json:"id"`
	UserID         int64                `gorm:"column:user_id;not null;index" json:"user_id"`
	Role           enums.MemberRole     `gorm:"column:role;not null" json:"role"`
	Category       enums.TicketCategory `gorm:"column:category;type:ticket_category;not null" json:"category"`
	Status         enums.TicketStatus   `gorm:"column:status;type:ticket_status;not null;default:'OPEN'" json:"status"`
	Summary        string               `gorm:"column:summary;not null" json:"summary"`
	ChatLog        json.RawMessage      `gorm:"column:chat_log;type:jsonb" json:"chat_log,omitempty"`
	Escalated      bool                 `gorm:"column:escalated;not null;default:false" json:"escalated"`
	RetentionUntil time.Time            `gorm:"column:retention_until;not null" json:"retention_until"`
	ResolvedAt     *time.Time           `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName fixes the table name regardless of gorm pluralization rules.
func (SupportTicket) TableName() string {
	return "support_tickets"
}
