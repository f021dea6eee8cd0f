package application

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	dashboard "clientdesk/internal/dashboard/domain"
	implementations "clientdesk/internal/implementations/domain"
)

// TaskCounts is the slice of the task store the dashboard reads.
type TaskCounts interface {
	CountScheduledOn(ctx context.Context, userID string, day time.Time) (int, error)
	CountCompletedOn(ctx context.Context, userID string, day time.Time) (int, error)
	CountCompletedBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
	CompletedDatesBetween(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error)
}

// ProspectCounts is the slice of the prospect store the dashboard reads.
type ProspectCounts interface {
	CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error)
	CountConverted(ctx context.Context, userID string) (int, error)
}

// ImplementationReader loads the user's full implementation set.
type ImplementationReader interface {
	ListByOwner(ctx context.Context, userID string) ([]implementations.Implementation, error)
}

// Clock supplies the reference time; tests pin it.
type Clock func() time.Time

// Service assembles dashboard snapshots from the three stores.
type Service struct {
	tasks     TaskCounts
	prospects ProspectCounts
	impls     ImplementationReader
	clock     Clock
}

// NewService constructs a dashboard service.
func NewService(tasks TaskCounts, prospects ProspectCounts, impls ImplementationReader, clock Clock) (*Service, error) {
	if tasks == nil {
		return nil, errors.New("dashboard service: nil task reader")
	}
	if prospects == nil {
		return nil, errors.New("dashboard service: nil prospect reader")
	}
	if impls == nil {
		return nil, errors.New("dashboard service: nil implementation reader")
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{tasks: tasks, prospects: prospects, impls: impls, clock: clock}, nil
}

// Snapshot issues the user's seven reads concurrently, waits for all of
// them, and aggregates in memory. The batch is fail-fast: the first
// failing read cancels the rest and no partial snapshot is returned.
// Retries and timeouts are the caller's and the driver's business, not
// ours.
func (s *Service) Snapshot(ctx context.Context, userID string) (*dashboard.Snapshot, error) {
	if userID == "" {
		return nil, errors.New("dashboard service: empty user id")
	}

	now := s.clock().UTC()
	today := implementations.StartOfDay(now)
	weekStart := dashboard.WeekStart(today)
	weekEnd := weekStart.AddDate(0, 0, 6)
	monthStart := implementations.MonthStart(today)
	windowStart := today.AddDate(0, 0, -6)

	var (
		counts    dashboard.RawCounts
		impls     []implementations.Implementation
		completed []time.Time
	)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		n, err := s.tasks.CountScheduledOn(gctx, userID, today)
		counts.TasksDueToday = n
		return err
	})
	group.Go(func() error {
		n, err := s.tasks.CountCompletedOn(gctx, userID, today)
		counts.TasksCompletedToday = n
		return err
	})
	group.Go(func() error {
		n, err := s.tasks.CountCompletedBetween(gctx, userID, weekStart, weekEnd)
		counts.TasksCompletedThisWeek = n
		return err
	})
	group.Go(func() error {
		n, err := s.prospects.CountCreatedSince(gctx, userID, monthStart)
		counts.NewProspectsThisMonth = n
		return err
	})
	group.Go(func() error {
		n, err := s.prospects.CountConverted(gctx, userID)
		counts.ConvertedProspects = n
		return err
	})
	group.Go(func() error {
		list, err := s.impls.ListByOwner(gctx, userID)
		impls = list
		return err
	})
	group.Go(func() error {
		dates, err := s.tasks.CompletedDatesBetween(gctx, userID, windowStart, today)
		completed = dates
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	snapshot := dashboard.ComputeSnapshot(impls, completed, counts, now)
	return &snapshot, nil
}
