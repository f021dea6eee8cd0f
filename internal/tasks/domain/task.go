package tasks

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Task represents a dated to-do item. Completion is tracked against the
// scheduled date; there is no separate completion timestamp.
type Task struct {
	ID          string
	UserID      string
	Title       string
	Notes       string
	ScheduledOn time.Time
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks task invariants.
func (t Task) Validate() error {
	if t.ID == "" {
		return errors.New("task: empty id")
	}
	if t.UserID == "" {
		return errors.New("task: empty user id")
	}
	if t.Title == "" {
		return errors.New("task: empty title")
	}
	if t.ScheduledOn.IsZero() {
		return errors.New("task: empty scheduled date")
	}
	if !ValidStatus(t.Status) {
		return errors.New("task: invalid status")
	}
	return nil
}

// ValidStatus reports whether value is a known task status.
func ValidStatus(value string) bool {
	return value == StatusPending || value == StatusCompleted
}

// NewID generates a random task id.
func NewID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "task-" + hex.EncodeToString(buf)
}

// StartOfDay normalizes t to midnight UTC of its calendar day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("task: not found")

// Repository manages task persistence.
type Repository interface {
	Get(ctx context.Context, id string) (*Task, error)
	ListByOwner(ctx context.Context, userID string, from, to *time.Time) ([]Task, error)
	Create(ctx context.Context, task *Task) error
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}
