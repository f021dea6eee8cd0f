package implementations

import "errors"

var (
	// ErrEmptyID is returned when the implementation id is empty.
	ErrEmptyID = errors.New("implementation: empty id")
	// ErrEmptyUserID is returned when the owner id is empty.
	ErrEmptyUserID = errors.New("implementation: empty user id")
	// ErrEmptyClientName is returned when the client name is empty.
	ErrEmptyClientName = errors.New("implementation: empty client name")
	// ErrNegativeAmount is returned when the recurring amount is negative.
	ErrNegativeAmount = errors.New("implementation: negative recurring amount")
	// ErrInvalidStatus is returned for an unknown status value.
	ErrInvalidStatus = errors.New("implementation: invalid status")
	// ErrEndBeforeStart is returned when the end date precedes the start date.
	ErrEndBeforeStart = errors.New("implementation: end date before start date")
	// ErrNotFound is returned when an implementation does not exist.
	ErrNotFound = errors.New("implementation: not found")
)
