package audit

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
)

func setupAuditDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS audit_log_entries (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  admin_id INTEGER NOT NULL,
  action TEXT NOT NULL,
  module TEXT NOT NULL,
  before TEXT,
  after TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestListIsTenantScopedNewestFirst(t *testing.T) {
	db := setupAuditDB(t)
	repo := NewRepository(db)
	tenantID := uuid.New()

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Create(context.Background(), &models.AuditLogEntry{
			TenantID: tenantID,
			AdminID:  int64(i),
			Action:   "feature_flag.toggle",
			Module:   "payments",
		}))
		time.Sleep(time.Millisecond)
	}
	require.NoError(t, repo.Create(context.Background(), &models.AuditLogEntry{
		TenantID: uuid.New(),
		AdminID:  99,
		Action:   "feature_flag.toggle",
		Module:   "wallet",
	}))

	entries, err := repo.List(context.Background(), tenantID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(3), entries[0].AdminID)
	assert.Equal(t, int64(1), entries[2].AdminID)
}

func TestListOrderIsStableOnEqualTimestamps(t *testing.T) {
	db := setupAuditDB(t)
	repo := NewRepository(db)
	tenantID := uuid.New()
	stamp := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(context.Background(), &models.AuditLogEntry{
			TenantID:  tenantID,
			AdminID:   int64(i),
			Action:    "feature_flag.toggle",
			Module:    "support",
			CreatedAt: stamp,
		}))
	}

	first, err := repo.List(context.Background(), tenantID, 10)
	require.NoError(t, err)
	second, err := repo.List(context.Background(), tenantID, 10)
	require.NoError(t, err)

	require.Len(t, first, 5)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID, "tied timestamps must not reshuffle between reads")
	}
}
