package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	prospects "clientdesk/internal/prospects/domain"
)

// Repository is a Postgres prospect store.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get loads a prospect by id.
func (r *Repository) Get(ctx context.Context, id string) (*prospects.Prospect, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("prospect repo: nil db")
	}
	if id == "" {
		return nil, errors.New("prospect repo: empty id")
	}

	var prospect prospects.Prospect
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, name, company, status, created_at, updated_at
FROM prospects
WHERE id = $1
LIMIT 1`, id).Scan(
		&prospect.ID,
		&prospect.UserID,
		&prospect.Name,
		&prospect.Company,
		&prospect.Status,
		&prospect.CreatedAt,
		&prospect.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	normalize(&prospect)
	return &prospect, nil
}

// ListByOwner loads the user's prospects, newest first, optionally
// filtered by status.
func (r *Repository) ListByOwner(ctx context.Context, userID, status string) ([]prospects.Prospect, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("prospect repo: nil db")
	}
	if userID == "" {
		return nil, errors.New("prospect repo: empty user id")
	}

	query := `
SELECT id, user_id, name, company, status, created_at, updated_at
FROM prospects
WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		args = append(args, status)
		query += " AND status = $2"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []prospects.Prospect
	for rows.Next() {
		var prospect prospects.Prospect
		if err := rows.Scan(
			&prospect.ID,
			&prospect.UserID,
			&prospect.Name,
			&prospect.Company,
			&prospect.Status,
			&prospect.CreatedAt,
			&prospect.UpdatedAt,
		); err != nil {
			return nil, err
		}
		normalize(&prospect)
		result = append(result, prospect)
	}
	return result, rows.Err()
}

// Create inserts a new prospect.
func (r *Repository) Create(ctx context.Context, prospect *prospects.Prospect) error {
	if r == nil || r.db == nil {
		return errors.New("prospect repo: nil db")
	}
	if prospect == nil {
		return errors.New("prospect repo: nil prospect")
	}
	if err := prospect.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO prospects (id, user_id, name, company, status)
VALUES ($1, $2, $3, $4, $5)`,
		prospect.ID,
		prospect.UserID,
		prospect.Name,
		prospect.Company,
		prospect.Status,
	)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if prospect.CreatedAt.IsZero() {
		prospect.CreatedAt = now
	}
	prospect.UpdatedAt = now
	return nil
}

// UpdateStatus moves a prospect to a new pipeline status.
func (r *Repository) UpdateStatus(ctx context.Context, id, status string) error {
	if r == nil || r.db == nil {
		return errors.New("prospect repo: nil db")
	}
	if !prospects.ValidStatus(status) {
		return prospects.ErrInvalidStatus
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE prospects SET status = $2, updated_at = NOW()
WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return prospects.ErrNotFound
	}
	return nil
}

// CountCreatedSince counts the user's prospects created at or after the
// given instant.
func (r *Repository) CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	return r.count(ctx, `
SELECT COUNT(*) FROM prospects
WHERE user_id = $1 AND created_at >= $2`, userID, since.UTC())
}

// CountConverted counts the user's converted prospects.
func (r *Repository) CountConverted(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `
SELECT COUNT(*) FROM prospects
WHERE user_id = $1 AND status = $2`, userID, prospects.StatusConverted)
}

func (r *Repository) count(ctx context.Context, query string, args ...any) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("prospect repo: nil db")
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func normalize(prospect *prospects.Prospect) {
	prospect.CreatedAt = prospect.CreatedAt.UTC()
	prospect.UpdatedAt = prospect.UpdatedAt.UTC()
}
