package implementations

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCancelled = "cancelled"
)

// NewID generates a random implementation id.
func NewID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "impl-" + hex.EncodeToString(buf)
}

// Implementation represents a billable client engagement with an
// optional recurring monthly charge.
type Implementation struct {
	ID                string
	UserID            string
	ClientName        string
	RecurringAmount   float64
	Status            string
	StartDate         *time.Time
	EndDate           *time.Time
	DeliveryCompleted bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks implementation invariants.
func (i Implementation) Validate() error {
	if i.ID == "" {
		return ErrEmptyID
	}
	if i.UserID == "" {
		return ErrEmptyUserID
	}
	if i.ClientName == "" {
		return ErrEmptyClientName
	}
	if i.RecurringAmount < 0 {
		return ErrNegativeAmount
	}
	if !ValidStatus(i.Status) {
		return ErrInvalidStatus
	}
	if i.StartDate != nil && i.EndDate != nil && i.EndDate.Before(*i.StartDate) {
		return ErrEndBeforeStart
	}
	return nil
}

// ValidStatus reports whether value is a known implementation status.
func ValidStatus(value string) bool {
	switch value {
	case StatusActive, StatusPaused, StatusCancelled:
		return true
	}
	return false
}

// EffectiveStart returns the day the recurrence window opens: the
// explicit start date when present, otherwise the creation date,
// normalized to the start of that calendar day.
func (i Implementation) EffectiveStart() time.Time {
	if i.StartDate != nil {
		return StartOfDay(*i.StartDate)
	}
	return StartOfDay(i.CreatedAt)
}

// ActiveForMonth reports whether the recurring charge counts toward the
// month containing monthDate. The charge counts when the amount is
// positive, the implementation is active, and the closed interval from
// its effective start to its end date (open-ended when absent) overlaps
// the month.
func (i Implementation) ActiveForMonth(monthDate time.Time) bool {
	if i.RecurringAmount <= 0 {
		return false
	}
	if i.Status != StatusActive {
		return false
	}
	monthStart := MonthStart(monthDate)
	monthEnd := MonthEnd(monthDate)
	if i.EffectiveStart().After(monthEnd) {
		return false
	}
	if i.EndDate != nil && StartOfDay(*i.EndDate).Before(monthStart) {
		return false
	}
	return true
}

// MonthlyRecurringTotal sums recurring amounts over the implementations
// whose recurrence window covers the month containing monthDate.
func MonthlyRecurringTotal(impls []Implementation, monthDate time.Time) float64 {
	var total float64
	for _, impl := range impls {
		if impl.ActiveForMonth(monthDate) {
			total += impl.RecurringAmount
		}
	}
	return total
}

// CountPendingDelivery counts active implementations whose deliverable
// has not been marked complete.
func CountPendingDelivery(impls []Implementation) int {
	count := 0
	for _, impl := range impls {
		if impl.Status == StatusActive && !impl.DeliveryCompleted {
			count++
		}
	}
	return count
}

// StartOfDay normalizes t to midnight UTC of its calendar day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of the month containing t.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last day of the month containing t, at the start
// of that day.
func MonthEnd(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// Repository manages implementation persistence.
type Repository interface {
	Get(ctx context.Context, id string) (*Implementation, error)
	ListByOwner(ctx context.Context, userID string) ([]Implementation, error)
	Create(ctx context.Context, impl *Implementation) error
	Update(ctx context.Context, impl *Implementation) error
}
