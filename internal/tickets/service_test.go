package tickets

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/events"
	"github.com/servana-app/servana-backend/pkg/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type recordingEmitter struct {
	emitted []events.Type
}

func (r *recordingEmitter) Emit(ctx context.Context, eventType events.Type, tenantID uuid.UUID, payload any) {
	r.emitted = append(r.emitted, eventType)
}

func setupTicketsDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS support_tickets (
  tenant_id TEXT NOT NULL,
  id TEXT NOT NULL,
  user_id INTEGER NOT NULL,
  role TEXT NOT NULL,
  category TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'OPEN',
  summary TEXT NOT NULL,
  chat_log TEXT,
  escalated INTEGER NOT NULL DEFAULT 0,
  retention_until DATETIME NOT NULL,
  resolved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  PRIMARY KEY (tenant_id, id)
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newTicketsService(t *testing.T, db *gorm.DB, emitter eventEmitter, now func() time.Time) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Repository:        NewRepository(db),
		TransactionRunner: gormTxRunner{db: db},
		Events:            emitter,
		Logger:            logg,
		Now:               now,
	})
	require.NoError(t, err)
	return svc
}

func TestOpenAssignsYearScopedIDs(t *testing.T) {
	db := setupTicketsDB(t)
	fixed := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := newTicketsService(t, db, nil, func() time.Time { return fixed })

	tenantID := uuid.New()
	for i := 1; i <= 3; i++ {
		ticket, err := svc.Open(context.Background(), OpenInput{
			TenantID: tenantID,
			UserID:   123,
			Role:     enums.MemberRoleClient,
			Category: enums.TicketCategoryGeneral,
			Summary:  "cannot see my order",
		})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("T-2026-%05d", i), ticket.ID)
	}
}

func TestOpenSetsRetentionFiveYearsOut(t *testing.T) {
	db := setupTicketsDB(t)
	fixed := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := newTicketsService(t, db, nil, func() time.Time { return fixed })

	ticket, err := svc.Open(context.Background(), OpenInput{
		TenantID: uuid.New(),
		UserID:   123,
		Role:     enums.MemberRoleClient,
		Category: enums.TicketCategoryGeneral,
		Summary:  "billing question",
	})
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(RetentionPeriod), ticket.RetentionUntil)
	assert.False(t, ticket.Escalated)
}

func TestOpenEscalatesUrgentCategories(t *testing.T) {
	db := setupTicketsDB(t)
	emitter := &recordingEmitter{}
	svc := newTicketsService(t, db, emitter, nil)

	ticket, err := svc.Open(context.Background(), OpenInput{
		TenantID: uuid.New(),
		UserID:   123,
		Role:     enums.MemberRoleClient,
		Category: enums.TicketCategoryLegalUrgent,
		Summary:  "received a court notice",
	})
	require.NoError(t, err)
	assert.True(t, ticket.Escalated)
	require.Len(t, emitter.emitted, 1)
	assert.Equal(t, events.TypeTicketEscalated, emitter.emitted[0])
}

func TestListPendingEscalated(t *testing.T) {
	db := setupTicketsDB(t)
	svc := newTicketsService(t, db, nil, nil)
	tenantID := uuid.New()

	_, err := svc.Open(context.Background(), OpenInput{
		TenantID: tenantID, UserID: 1, Role: enums.MemberRoleClient,
		Category: enums.TicketCategoryDisputes, Summary: "pro never showed up",
	})
	require.NoError(t, err)
	_, err = svc.Open(context.Background(), OpenInput{
		TenantID: tenantID, UserID: 2, Role: enums.MemberRoleClient,
		Category: enums.TicketCategoryGeneral, Summary: "app question",
	})
	require.NoError(t, err)

	pending, err := svc.ListPendingEscalated(context.Background(), tenantID, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, enums.TicketCategoryDisputes, pending[0].Category)
}

func TestResolve(t *testing.T) {
	db := setupTicketsDB(t)
	svc := newTicketsService(t, db, nil, nil)
	tenantID := uuid.New()

	ticket, err := svc.Open(context.Background(), OpenInput{
		TenantID: tenantID, UserID: 1, Role: enums.MemberRoleClient,
		Category: enums.TicketCategoryGeneral, Summary: "question",
	})
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), ResolveInput{
		TenantID: tenantID,
		TicketID: ticket.ID,
		Status:   enums.TicketStatusHumanResolved,
		AdminID:  99,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.TicketStatusHumanResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	_, err = svc.Resolve(context.Background(), ResolveInput{
		TenantID: tenantID,
		TicketID: ticket.ID,
		Status:   enums.TicketStatusAIResolved,
		AdminID:  99,
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())

	_, err = svc.Resolve(context.Background(), ResolveInput{
		TenantID: tenantID,
		TicketID: "T-2026-99999",
		Status:   enums.TicketStatusAIResolved,
	})
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())

	_, err = svc.Resolve(context.Background(), ResolveInput{
		TenantID: tenantID,
		TicketID: ticket.ID,
		Status:   enums.TicketStatusOpen,
	})
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}
