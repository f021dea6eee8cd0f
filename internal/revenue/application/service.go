package application

import (
	"context"
	"errors"
	"time"

	implementations "clientdesk/internal/implementations/domain"
	revenue "clientdesk/internal/revenue/domain"
)

const monthLayout = "2006-01"

// ErrInvalidMonth reports a month parameter that is not YYYY-MM.
var ErrInvalidMonth = errors.New("revenue service: month must be YYYY-MM")

// ImplementationReader loads the user's full implementation set.
type ImplementationReader interface {
	ListByOwner(ctx context.Context, userID string) ([]implementations.Implementation, error)
}

// Clock supplies the reference time; tests pin it.
type Clock func() time.Time

// Service builds monthly revenue statements on demand.
type Service struct {
	impls ImplementationReader
	clock Clock
}

// NewService constructs a revenue service.
func NewService(impls ImplementationReader, clock Clock) (*Service, error) {
	if impls == nil {
		return nil, errors.New("revenue service: nil implementation reader")
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{impls: impls, clock: clock}, nil
}

// Statement derives the user's statement for the given YYYY-MM month.
// An empty month means the current one.
func (s *Service) Statement(ctx context.Context, userID, month string) (*revenue.Statement, error) {
	if userID == "" {
		return nil, errors.New("revenue service: empty user id")
	}

	now := s.clock().UTC()
	target := now
	if month != "" {
		parsed, err := time.Parse(monthLayout, month)
		if err != nil {
			return nil, ErrInvalidMonth
		}
		target = parsed
	}

	impls, err := s.impls.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	stmt := revenue.BuildStatement(userID, target, impls, now)
	return &stmt, nil
}
