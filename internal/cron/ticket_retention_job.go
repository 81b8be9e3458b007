package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/servana-app/servana-backend/pkg/logger"
)

type expiredTicketPurger interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// TicketRetentionJobParams configure the ticket retention sweep.
type TicketRetentionJobParams struct {
	Logger  *logger.Logger
	Tickets expiredTicketPurger
}

// NewTicketRetentionJob builds the cron job that purges support tickets
// whose compliance retention window has passed.
func NewTicketRetentionJob(params TicketRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Tickets == nil {
		return nil, fmt.Errorf("tickets repository required")
	}
	return &ticketRetentionJob{
		logg:    params.Logger,
		tickets: params.Tickets,
		now:     time.Now,
	}, nil
}

type ticketRetentionJob struct {
	logg    *logger.Logger
	tickets expiredTicketPurger
	now     func() time.Time
}

func (j *ticketRetentionJob) Name() string { return "ticket-retention" }

func (j *ticketRetentionJob) Run(ctx context.Context) error {
	purged, err := j.tickets.DeleteExpired(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("purge expired tickets: %w", err)
	}
	if purged > 0 {
		ctx = j.logg.WithField(ctx, "purged", purged)
		j.logg.Info(ctx, "expired tickets purged")
	}
	return nil
}
