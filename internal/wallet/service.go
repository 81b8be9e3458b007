package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/servana-app/servana-backend/pkg/db/models"
	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/pagination"
)

// AppendInput captures the immutable data one ledger entry requires.
type AppendInput struct {
	TenantID       uuid.UUID
	OrderID        int64
	UserID         int64
	AmountCents    int64
	Type           enums.WalletTransactionType
	Model          enums.CommissionModel
	CommissionRate *float64
}

// HistoryPage is one cursor page of ledger entries, newest first.
type HistoryPage struct {
	Transactions []models.WalletTransaction
	NextCursor   string
}

// Service exposes the escrow ledger. Entries are only ever appended;
// the ledger is the source of truth and order status is a projection
// of it.
type Service interface {
	Append(ctx context.Context, input AppendInput) (*models.WalletTransaction, error)
	Balance(ctx context.Context, tenantID uuid.UUID, userID int64) (int64, error)
	History(ctx context.Context, tenantID uuid.UUID, userID int64, params pagination.Params) (*HistoryPage, error)
}

type service struct {
	repo Repository
}

// NewService wires a wallet service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("wallet repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Append(ctx context.Context, input AppendInput) (*models.WalletTransaction, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.AmountCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be non-negative")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown transaction type")
	}
	if !input.Model.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown commission model")
	}

	txn := &models.WalletTransaction{
		TenantID:       input.TenantID,
		OrderID:        input.OrderID,
		UserID:         input.UserID,
		AmountCents:    input.AmountCents,
		Type:           input.Type,
		Model:          input.Model,
		CommissionRate: input.CommissionRate,
	}
	created, err := s.repo.Create(ctx, txn)
	if err != nil {
		// Storage faults are always fatal; nothing here is swallowed.
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending wallet transaction")
	}
	return created, nil
}

func (s *service) Balance(ctx context.Context, tenantID uuid.UUID, userID int64) (int64, error) {
	if tenantID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if userID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	balance, err := s.repo.Balance(ctx, tenantID, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "computing balance")
	}
	return balance, nil
}

func (s *service) History(ctx context.Context, tenantID uuid.UUID, userID int64, params pagination.Params) (*HistoryPage, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.History(ctx, tenantID, userID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing wallet history")
	}

	page := &HistoryPage{Transactions: rows}
	if len(rows) > limit {
		page.Transactions = rows[:limit]
		last := page.Transactions[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}
