package auth

import (
	"context"
	"database/sql"
	"errors"
)

var (
	// ErrOwnershipMismatch indicates the record belongs to a different user.
	ErrOwnershipMismatch = errors.New("ownership mismatch")
	// ErrNotFound indicates the record does not exist.
	ErrNotFound = errors.New("record not found")
)

// EnsureOwner is the row access rule: a record may only be read or
// mutated by the user that owns it.
func EnsureOwner(requesterID, ownerID string) error {
	if requesterID == "" {
		return ErrOwnershipMismatch
	}
	if ownerID == "" {
		return ErrNotFound
	}
	if ownerID != requesterID {
		return ErrOwnershipMismatch
	}
	return nil
}

// RecordKind names an owned record collection.
type RecordKind string

const (
	KindTask           RecordKind = "tasks"
	KindProspect       RecordKind = "prospects"
	KindImplementation RecordKind = "implementations"
)

var recordTables = map[RecordKind]string{
	KindTask:           "tasks",
	KindProspect:       "prospects",
	KindImplementation: "implementations",
}

// OwnerChecker validates record ownership for a requesting user.
type OwnerChecker interface {
	EnsureRecordOwner(ctx context.Context, userID string, kind RecordKind, recordID string) error
}

// RecordChecker resolves a record's owner from the store and applies
// the ownership rule.
type RecordChecker struct {
	db *sql.DB
}

// NewRecordChecker constructs a RecordChecker.
func NewRecordChecker(db *sql.DB) *RecordChecker {
	if db == nil {
		return nil
	}
	return &RecordChecker{db: db}
}

// EnsureRecordOwner verifies the record belongs to the user.
func (c *RecordChecker) EnsureRecordOwner(ctx context.Context, userID string, kind RecordKind, recordID string) error {
	if c == nil || c.db == nil {
		return nil
	}
	if userID == "" || recordID == "" {
		return ErrOwnershipMismatch
	}
	table, ok := recordTables[kind]
	if !ok {
		return errors.New("auth: unknown record kind")
	}
	var ownerID string
	err := c.db.QueryRowContext(ctx, "SELECT user_id FROM "+table+" WHERE id = $1", recordID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return EnsureOwner(userID, ownerID)
}
