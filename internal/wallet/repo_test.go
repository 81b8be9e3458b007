package wallet

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/servana-app/servana-backend/pkg/db/models"
	"github.com/servana-app/servana-backend/pkg/enums"
)

func setupWalletTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS wallet_transactions (
  tenant_id TEXT NOT NULL,
  id INTEGER NOT NULL,
  order_id INTEGER NOT NULL,
  user_id INTEGER NOT NULL,
  amount_cents INTEGER NOT NULL,
  type TEXT NOT NULL,
  model TEXT NOT NULL,
  commission_rate REAL,
  created_at DATETIME,
  PRIMARY KEY (tenant_id, id)
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func appendEntry(t *testing.T, repo Repository, tenantID uuid.UUID, orderID, userID, amount int64, txType enums.WalletTransactionType) *models.WalletTransaction {
	t.Helper()
	txn, err := repo.Create(context.Background(), &models.WalletTransaction{
		TenantID:    tenantID,
		OrderID:     orderID,
		UserID:      userID,
		AmountCents: amount,
		Type:        txType,
		Model:       enums.CommissionModelBridge,
	})
	require.NoError(t, err)
	return txn
}

func TestRepositoryCreateAssignsSequentialIDs(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)

	tenantA := uuid.New()
	tenantB := uuid.New()

	first := appendEntry(t, repo, tenantA, 1, 123, 10000, enums.WalletTransactionTypeEscrowIn)
	second := appendEntry(t, repo, tenantA, 2, 123, 5000, enums.WalletTransactionTypeEscrowIn)
	other := appendEntry(t, repo, tenantB, 1, 7, 2500, enums.WalletTransactionTypeEscrowIn)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, int64(1), other.ID, "sequence restarts per tenant")
}

func TestRepositoryBalanceSignsByType(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	appendEntry(t, repo, tenantID, 1, 123, 10000, enums.WalletTransactionTypeEscrowIn)
	appendEntry(t, repo, tenantID, 1, 123, 3000, enums.WalletTransactionTypeEscrowOut)
	appendEntry(t, repo, tenantID, 2, 123, 500, enums.WalletTransactionTypeFee)
	appendEntry(t, repo, tenantID, 3, 999, 7777, enums.WalletTransactionTypeEscrowIn)

	balance, err := repo.Balance(ctx, tenantID, 123)
	require.NoError(t, err)
	assert.Equal(t, int64(6500), balance)

	none, err := repo.Balance(ctx, tenantID, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), none)
}

func TestRepositoryHistoryNewestFirst(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		txn := appendEntry(t, repo, tenantID, int64(i+1), 123, 1000, enums.WalletTransactionTypeEscrowIn)
		require.NoError(t, db.Model(&models.WalletTransaction{}).
			Where("tenant_id = ? AND id = ?", tenantID, txn.ID).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	rows, err := repo.History(ctx, tenantID, 123, 10, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(3), rows[0].ID)
	assert.Equal(t, int64(1), rows[2].ID)
}

func TestRepositoryListByOrderID(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	appendEntry(t, repo, tenantID, 5, 123, 10000, enums.WalletTransactionTypeEscrowIn)
	appendEntry(t, repo, tenantID, 6, 123, 2000, enums.WalletTransactionTypeEscrowIn)

	rows, err := repo.ListByOrderID(ctx, tenantID, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(5), rows[0].OrderID)
}
