package digest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	implementations "clientdesk/internal/implementations/domain"
	"clientdesk/internal/notify"
)

const dateLayout = "2006-01-02"

// TaskReader counts tasks for the digest.
type TaskReader interface {
	CountScheduledOn(ctx context.Context, userID string, day time.Time) (int, error)
}

// ImplementationReader lists a user's implementations for the digest.
type ImplementationReader interface {
	ListByOwner(ctx context.Context, userID string) ([]implementations.Implementation, error)
}

// Runner builds and sends one user's daily digest.
type Runner struct {
	tasks    TaskReader
	impls    ImplementationReader
	channel  notify.Channel
	template *notify.Template
	logger   *log.Logger
}

// NewRunner wires the digest runner.
func NewRunner(tasks TaskReader, impls ImplementationReader, channel notify.Channel, template *notify.Template, logger *log.Logger) (*Runner, error) {
	if tasks == nil {
		return nil, errors.New("digest runner: task reader is required")
	}
	if impls == nil {
		return nil, errors.New("digest runner: implementation reader is required")
	}
	if channel == nil {
		return nil, errors.New("digest runner: channel is required")
	}
	if template == nil {
		var err error
		template, err = notify.NewTemplate("")
		if err != nil {
			return nil, err
		}
	}
	return &Runner{tasks: tasks, impls: impls, channel: channel, template: template, logger: logger}, nil
}

// Run sends the digest for one user covering the given day.
func (r *Runner) Run(ctx context.Context, userID string, day time.Time) error {
	if userID == "" {
		return errors.New("digest runner: user id is required")
	}
	day = implementations.StartOfDay(day)

	due, err := r.tasks.CountScheduledOn(ctx, userID, day)
	if err != nil {
		return fmt.Errorf("digest runner: count tasks due: %w", err)
	}
	impls, err := r.impls.ListByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("digest runner: list implementations: %w", err)
	}

	content, err := r.template.Render(notify.TemplateData{
		Date:              day.Format(dateLayout),
		TasksDueToday:     due,
		DeliveriesPending: implementations.CountPendingDelivery(impls),
		RecurringTotal:    fmt.Sprintf("%.2f", implementations.MonthlyRecurringTotal(impls, day)),
	})
	if err != nil {
		return fmt.Errorf("digest runner: render: %w", err)
	}
	return r.channel.Send(ctx, content)
}
