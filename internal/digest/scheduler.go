package digest

import (
	"context"
	"log"
	"time"

	"clientdesk/internal/observability/metrics"
)

const dailyAtLayout = "15:04"

// Scheduler fires the digest once per day at a configured UTC time.
type Scheduler struct {
	runner  *Runner
	users   []string
	dailyAt string
	timeout time.Duration
	logger  *log.Logger
}

// NewScheduler wires the digest scheduler from config.
func NewScheduler(runner *Runner, cfg Config, logger *log.Logger) *Scheduler {
	return &Scheduler{
		runner:  runner,
		users:   cfg.Users,
		dailyAt: cfg.DailyAt,
		timeout: cfg.Timeout(),
		logger:  logger,
	}
}

// Start blocks until ctx is cancelled, checking the clock every minute.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.runner == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			now = now.UTC()
			if !s.shouldRun(now) {
				continue
			}
			s.runOnce(ctx, now)
		}
	}
}

func (s *Scheduler) shouldRun(now time.Time) bool {
	at, err := time.Parse(dailyAtLayout, s.dailyAt)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("digest: invalid daily_at %q: %v", s.dailyAt, err)
		}
		return false
	}
	return now.Hour() == at.Hour() && now.Minute() == at.Minute()
}

// runOnce sends the digest to every configured user. Per-user failures
// are logged and counted, never fatal.
func (s *Scheduler) runOnce(ctx context.Context, now time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, userID := range s.users {
		if userID == "" {
			continue
		}
		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.runner.Run(runCtx, userID, day)
		cancel()
		if err != nil {
			metrics.IncDigestRun(metrics.ResultError)
			if s.logger != nil {
				s.logger.Printf("digest: run failed for user %s: %v", userID, err)
			}
			continue
		}
		metrics.IncDigestRun(metrics.ResultSuccess)
	}
}
