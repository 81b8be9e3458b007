package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/servana-app/servana-backend/pkg/enums"
)

// FeatureFlagState stores the current killswitch value for one flag in one
// tenant. Missing rows read as enabled.
type FeatureFlagState struct {
	TenantID  uuid.UUID         `gorm:"column:tenant_id;type:uuid;primaryKey" json:"tenant_id"`
	Name      enums.FeatureFlag `gorm:"column:name;primaryKey" json:"name"`
	Enabled   bool              `gorm:"column:enabled;not null" json:"enabled"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName fixes the table name regardless of gorm pluralization rules.
func (FeatureFlagState) TableName() string {
	return "feature_flag_states"
}
