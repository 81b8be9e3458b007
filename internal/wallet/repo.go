package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servana-app/servana-backend/pkg/db/models"
	"github.com/servana-app/servana-backend/pkg/pagination"
)

// Repository manages persistence for wallet transactions. The table is
// append-only; there is deliberately no update or delete method.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.WalletTransaction) (*models.WalletTransaction, error)
	Balance(ctx context.Context, tenantID uuid.UUID, userID int64) (int64, error)
	History(ctx context.Context, tenantID uuid.UUID, userID int64, limit int, cursor *pagination.Cursor) ([]models.WalletTransaction, error)
	ListByOrderID(ctx context.Context, tenantID uuid.UUID, orderID int64) ([]models.WalletTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
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
// transaction. It must run inside the caller's transaction.
func (r *repository) Create(ctx context.Context, txn *models.WalletTransaction) (*models.WalletTransaction, error) {
	var nextID int64
	err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("tenant_id = ?", txn.TenantID).
		Select("COALESCE(MAX(id), 0) + 1").
		Scan(&nextID).Error
	if err != nil {
		return nil, err
	}
	txn.ID = nextID
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

// Balance sums credits minus debits for one user. Signs follow the
// transaction type, not the stored amount, which is always positive.
func (r *repository) Balance(ctx context.Context, tenantID uuid.UUID, userID int64) (int64, error) {
	var balance int64
	err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Select(`COALESCE(SUM(CASE WHEN type IN ('ESCROW_IN') THEN amount_cents ELSE -amount_cents END), 0)`).
		Scan(&balance).Error
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *repository) History(ctx context.Context, tenantID uuid.UUID, userID int64, limit int, cursor *pagination.Cursor) ([]models.WalletTransaction, error) {
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.WalletTransaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByOrderID(ctx context.Context, tenantID uuid.UUID, orderID int64) ([]models.WalletTransaction, error) {
	var rows []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
