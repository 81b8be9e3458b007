package flags

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/servana-app/servana-backend/pkg/db/models"
	"github.com/servana-app/servana-backend/pkg/enums"
)

// Repository manages persisted killswitch state. Only flags that have
// been toggled have rows; absent rows read as enabled.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, tenantID uuid.UUID, name enums.FeatureFlag) (*models.FeatureFlagState, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.FeatureFlagState, error)
	Upsert(ctx context.Context, state *models.FeatureFlagState) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a flags repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context, tenantID uuid.UUID, name enums.FeatureFlag) (*models.FeatureFlagState, error) {
	var state models.FeatureFlagState
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.FeatureFlagState, error) {
	var rows []models.FeatureFlagState
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Upsert(ctx context.Context, state *models.FeatureFlagState) error {
	// Column-explicit so a false Enabled is written rather than dropped
	// from the insert as a zero value.
	return r.db.WithContext(ctx).
		Select("tenant_id", "name", "enabled", "updated_at").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
		}).
		Create(state).Error
}
