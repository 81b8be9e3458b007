package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/servana-app/servana-backend/pkg/db/models"
	"github.com/servana-app/servana-backend/pkg/pagination"
)

// Repository manages persistence for orders. All reads and writes are
// tenant-scoped; callers provide the tenant explicitly on every call.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, tenantID uuid.UUID, id int64) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) (*models.Order, error)
	List(ctx context.Context, tenantID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create assigns the next sequential id for the tenant and inserts the
// order. It must run inside the caller's transaction so the id scan and
// the insert are atomic.
func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	var nextID int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("tenant_id = ?", order.TenantID).
		Select("COALESCE(MAX(id), 0) + 1").
		Scan(&nextID).Error
	if err != nil {
		return nil, err
	}
	order.ID = nextID
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate locks the order row for the duration of the
// surrounding transaction, serializing concurrent reconciliations and
// admin actions on the same order. SQLite, used in tests, has no row
// locks; its single-writer transactions give the same guarantee.
func (r *repository) FindByIDForUpdate(ctx context.Context, tenantID uuid.UUID, id int64) (*models.Order, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var order models.Order
	err := q.Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Save writes the full record back. There is no partial update path;
// callers fetch, mutate, and save.
func (r *repository) Save(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, error) {
	q := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
