package tickets

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servana-app/servana-backend/pkg/db/models"
	"github.com/servana-app/servana-backend/pkg/enums"
	pkgerrors "github.com/servana-app/servana-backend/pkg/errors"
	"github.com/servana-app/servana-backend/pkg/events"
	"github.com/servana-app/servana-backend/pkg/logger"
)

// RetentionPeriod is how long tickets must be kept for compliance.
const RetentionPeriod = 5 * 365 * 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, eventType events.Type, tenantID uuid.UUID, payload any)
}

// OpenInput captures a new support case, usually handed over from the
// assistant boundary.
type OpenInput struct {
	TenantID uuid.UUID
	UserID   int64
	Role     enums.MemberRole
	Category enums.TicketCategory
	Summary  string
	ChatLog  json.RawMessage
}

// ResolveInput closes a ticket with either an AI or human resolution.
type ResolveInput struct {
	TenantID uuid.UUID
	TicketID string
	Status   enums.TicketStatus
	AdminID  int64
}

// Service manages the support ticket lifecycle.
type Service interface {
	Open(ctx context.Context, input OpenInput) (*models.SupportTicket, error)
	Get(ctx context.Context, tenantID uuid.UUID, id string) (*models.SupportTicket, error)
	ListPendingEscalated(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.SupportTicket, error)
	Resolve(ctx context.Context, input ResolveInput) (*models.SupportTicket, error)
}

// ServiceParams lists the dependencies for the tickets service.
type ServiceParams struct {
	Repository        Repository
	TransactionRunner txRunner
	Events            eventEmitter
	Logger            *logger.Logger
	Now               func() time.Time
}

type service struct {
	repo   Repository
	tx     txRunner
	events eventEmitter
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the tickets service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, errors.New("tickets repository required")
	}
	if params.TransactionRunner == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:   params.Repository,
		tx:     params.TransactionRunner,
		events: params.Events,
		logg:   params.Logger,
		now:    now,
	}, nil
}

func (s *service) Open(ctx context.Context, input OpenInput) (*models.SupportTicket, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown ticket category")
	}
	if strings.TrimSpace(input.Summary) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "summary required")
	}

	now := s.now().UTC()
	ticket := &models.SupportTicket{
		TenantID:       input.TenantID,
		UserID:         input.UserID,
		Role:           input.Role,
		Category:       input.Category,
		Status:         enums.TicketStatusOpen,
		Summary:        strings.TrimSpace(input.Summary),
		ChatLog:        input.ChatLog,
		Escalated:      input.Category.RequiresEscalation(),
		RetentionUntil: now.Add(RetentionPeriod),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.WithTx(tx).Create(ctx, ticket)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating ticket")
		}
		ticket = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ticket.Escalated && s.events != nil {
		s.events.Emit(ctx, events.TypeTicketEscalated, input.TenantID, events.TicketEscalated{
			TicketID: ticket.ID,
			Category: string(ticket.Category),
		})
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"ticket_id": ticket.ID})
	s.logg.Info(logCtx, "support ticket opened")
	return ticket, nil
}

func (s *service) Get(ctx context.Context, tenantID uuid.UUID, id string) (*models.SupportTicket, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket id required")
	}
	ticket, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching ticket")
	}
	return ticket, nil
}

func (s *service) ListPendingEscalated(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.SupportTicket, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	rows, err := s.repo.ListPendingEscalated(ctx, tenantID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing escalated tickets")
	}
	return rows, nil
}

func (s *service) Resolve(ctx context.Context, input ResolveInput) (*models.SupportTicket, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if strings.TrimSpace(input.TicketID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket id required")
	}
	if !input.Status.IsResolved() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be a resolution")
	}

	var resolved *models.SupportTicket
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ticket, err := repo.FindByID(ctx, input.TenantID, input.TicketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching ticket")
		}
		if ticket.Status.IsResolved() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ticket already resolved")
		}

		now := s.now().UTC()
		ticket.Status = input.Status
		ticket.ResolvedAt = &now
		resolved, err = repo.Save(ctx, ticket)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving ticket")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}
