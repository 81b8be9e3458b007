package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLogEntry is an append-only record of administrative actions.
type AuditLogEntry struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	AdminID   int64     `gorm:"column:admin_id;not null" json:"admin_id"`
	Action    string    `gorm:"column:action;not null" json:"action"`
	Module    string    `gorm:"column:module;not null" json:"module"`
	Before    string    `gorm:"column:before" json:"before"`
	After     string    `gorm:"column:after" json:"after"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName fixes the table name regardless of gorm pluralization rules.
func (AuditLogEntry) TableName() string {
	return "audit_log_entries"
}
