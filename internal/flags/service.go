package flags

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servana-app/servana-backend/internal/audit"
	"github.com/servana-app/servana-backend/pkg/db/models"
	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/events"
	"github.com/servana-app/servana-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, eventType events.Type, tenantID uuid.UUID, payload any)
}

// Flag is the effective state of one killswitch.
type Flag struct {
	Name    enums.FeatureFlag `json:"name"`
	Enabled bool              `json:"enabled"`
}

// ToggleInput flips one flag. The name has already been parsed against
// the closed enum by the boundary.
type ToggleInput struct {
	TenantID uuid.UUID
	Name     enums.FeatureFlag
	Enabled  bool
	AdminID  int64
}

// Service exposes the per-tenant module killswitches.
type Service interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]Flag, error)
	IsEnabled(ctx context.Context, tenantID uuid.UUID, name enums.FeatureFlag) (bool, error)
	Toggle(ctx context.Context, input ToggleInput) (*Flag, error)
}

// ServiceParams lists the dependencies for the flags service.
type ServiceParams struct {
	Repository        Repository
	AuditRepo         audit.Repository
	TransactionRunner txRunner
	Events            eventEmitter
	Logger            *logger.Logger
}

type service struct {
	repo      Repository
	auditRepo audit.Repository
	tx        txRunner
	events    eventEmitter
	logg      *logger.Logger
}

// NewService builds the flags service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, errors.New("flags repository required")
	}
	if params.AuditRepo == nil {
		return nil, errors.New("audit repository required")
	}
	if params.TransactionRunner == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &service{
		repo:      params.Repository,
		auditRepo: params.AuditRepo,
		tx:        params.TransactionRunner,
		events:    params.Events,
		logg:      params.Logger,
	}, nil
}

// List returns every flag in the enum with its effective state.
func (s *service) List(ctx context.Context, tenantID uuid.UUID) ([]Flag, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	rows, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing flags")
	}

	stored := make(map[enums.FeatureFlag]bool, len(rows))
	for _, row := range rows {
		stored[row.Name] = row.Enabled
	}

	out := make([]Flag, 0, len(enums.AllFeatureFlags()))
	for _, name := range enums.AllFeatureFlags() {
		enabled, ok := stored[name]
		if !ok {
			enabled = true
		}
		out = append(out, Flag{Name: name, Enabled: enabled})
	}
	return out, nil
}

func (s *service) IsEnabled(ctx context.Context, tenantID uuid.UUID, name enums.FeatureFlag) (bool, error) {
	if tenantID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if !name.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "unknown feature flag")
	}
	state, err := s.repo.Find(ctx, tenantID, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching flag")
	}
	return state.Enabled, nil
}

func (s *service) Toggle(ctx context.Context, input ToggleInput) (*Flag, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if !input.Name.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown feature flag")
	}
	if input.AdminID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		before := true
		if state, err := repo.Find(ctx, input.TenantID, input.Name); err == nil {
			before = state.Enabled
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching flag")
		}

		if err := repo.Upsert(ctx, &models.FeatureFlagState{
			TenantID: input.TenantID,
			Name:     input.Name,
			Enabled:  input.Enabled,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving flag")
		}

		entry := &models.AuditLogEntry{
			TenantID: input.TenantID,
			AdminID:  input.AdminID,
			Action:   "feature_flag.toggle",
			Module:   input.Name.String(),
			Before:   strconv.FormatBool(before),
			After:    strconv.FormatBool(input.Enabled),
		}
		if err := s.auditRepo.WithTx(tx).Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing audit entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Emit(ctx, events.TypeFeatureFlagChanged, input.TenantID, events.FeatureFlagChanged{
			Flag:    input.Name.String(),
			Enabled: input.Enabled,
			AdminID: input.AdminID,
		})
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"flag": input.Name.String(), "enabled": input.Enabled})
	s.logg.Info(logCtx, "feature flag toggled")
	return &Flag{Name: input.Name, Enabled: input.Enabled}, nil
}
