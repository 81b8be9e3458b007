package tickets

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servana-app/servana-backend/pkg/db/models"
	"github.com/servana-app/servana-backend/pkg/enums"
)

// Repository manages persistence for support tickets.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ticket *models.SupportTicket) (*models.SupportTicket, error)
	FindByID(ctx context.Context, tenantID uuid.UUID, id string) (*models.SupportTicket, error)
	Save(ctx context.Context, ticket *models.SupportTicket) (*models.SupportTicket, error)
	ListPendingEscalated(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.SupportTicket, error)
	CountForYear(ctx context.Context, tenantID uuid.UUID, year int) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a tickets repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create assigns the next T-<year>-<seq> id for the tenant and inserts
// the ticket. It must run inside the caller's transaction.
func (r *repository) Create(ctx context.Context, ticket *models.SupportTicket) (*models.SupportTicket, error) {
	year := time.Now().UTC().Year()
	count, err := r.CountForYear(ctx, ticket.TenantID, year)
	if err != nil {
		return nil, err
	}
	ticket.ID = fmt.Sprintf("T-%d-%05d", year, count+1)
	if err := r.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *repository) FindByID(ctx context.Context, tenantID uuid.UUID, id string) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) Save(ctx context.Context, ticket *models.SupportTicket) (*models.SupportTicket, error) {
	if err := r.db.WithContext(ctx).Save(ticket).Error; err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *repository) ListPendingEscalated(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.SupportTicket, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.SupportTicket
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND escalated = ? AND status = ?", tenantID, true, enums.TicketStatusOpen).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountForYear(ctx context.Context, tenantID uuid.UUID, year int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SupportTicket{}).
		Where("tenant_id = ? AND id LIKE ?", tenantID, fmt.Sprintf("T-%d-%%", year)).
		Count(&count).Error
	return count, err
}

// DeleteExpired removes tickets whose compliance retention window has
// passed. Runs across tenants; only the retention sweep calls it.
func (r *repository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("retention_until < ?", before).
		Delete(&models.SupportTicket{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
