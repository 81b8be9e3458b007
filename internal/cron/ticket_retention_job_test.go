package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/servana-app/servana-backend/pkg/logger"
)

type stubTicketPurger struct {
	purged int64
	err    error
	calls  int
	before time.Time
}

func (s *stubTicketPurger) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	s.calls++
	s.before = before
	return s.purged, s.err
}

func TestTicketRetentionJobPurges(t *testing.T) {
	purger := &stubTicketPurger{purged: 3}
	job, err := NewTicketRetentionJob(TicketRetentionJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "cron-test"}),
		Tickets: purger,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	fixed := time.Date(2031, 6, 1, 12, 0, 0, 0, time.UTC)
	job.(*ticketRetentionJob).now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	if purger.calls != 1 {
		t.Fatalf("expected one purge call, got %d", purger.calls)
	}
	if !purger.before.Equal(fixed) {
		t.Fatalf("expected cutoff %s, got %s", fixed, purger.before)
	}
}

func TestTicketRetentionJobPropagatesErrors(t *testing.T) {
	purger := &stubTicketPurger{err: errors.New("db down")}
	job, err := NewTicketRetentionJob(TicketRetentionJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "cron-test"}),
		Tickets: purger,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error from failing purge")
	}
}

func TestTicketRetentionJobRequiresDeps(t *testing.T) {
	if _, err := NewTicketRetentionJob(TicketRetentionJobParams{Tickets: &stubTicketPurger{}}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := NewTicketRetentionJob(TicketRetentionJobParams{Logger: logger.New(logger.Options{ServiceName: "cron-test"})}); err == nil {
		t.Fatal("expected error without tickets repository")
	}
}
