package prospects

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// Prospect statuses. A prospect starts as new and is moved along by the
// owner; converted prospects feed the dashboard conversion rate.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusConverted = "converted"
	StatusLost      = "lost"
)

var (
	ErrEmptyID       = errors.New("prospect: empty id")
	ErrEmptyUserID   = errors.New("prospect: empty user id")
	ErrEmptyName     = errors.New("prospect: empty name")
	ErrInvalidStatus = errors.New("prospect: invalid status")
	ErrNotFound      = errors.New("prospect: not found")
)

// Prospect is a sales lead owned by a single user.
type Prospect struct {
	ID        string
	UserID    string
	Name      string
	Company   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return "prospect-" + hex.EncodeToString(buf)
}

func ValidStatus(status string) bool {
	switch status {
	case StatusNew, StatusContacted, StatusConverted, StatusLost:
		return true
	}
	return false
}

func (p Prospect) Validate() error {
	if p.ID == "" {
		return ErrEmptyID
	}
	if p.UserID == "" {
		return ErrEmptyUserID
	}
	if p.Name == "" {
		return ErrEmptyName
	}
	if !ValidStatus(p.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Repository persists prospects. Implementations must scope reads by
// owner; cross-user access is rejected one layer up.
type Repository interface {
	Get(ctx context.Context, id string) (*Prospect, error)
	ListByOwner(ctx context.Context, userID, status string) ([]Prospect, error)
	Create(ctx context.Context, prospect *Prospect) error
	UpdateStatus(ctx context.Context, id, status string) error
}
