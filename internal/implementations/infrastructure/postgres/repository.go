package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	implementations "clientdesk/internal/implementations/domain"
	"clientdesk/internal/storage"
)

const defaultImplementationsTable = "implementations"

// Repository is a Postgres implementation store.
type Repository struct {
	db    storage.DBTX
	table string
}

// Option configures the repository.
type Option func(*Repository)

// WithTable overrides the default table name.
func WithTable(table string) Option {
	return func(repo *Repository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewRepository constructs a repository.
func NewRepository(db storage.DBTX, opts ...Option) *Repository {
	repo := &Repository{db: db, table: defaultImplementationsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Get loads an implementation by id.
func (r *Repository) Get(ctx context.Context, id string) (*implementations.Implementation, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("implementation repo: nil db")
	}
	if id == "" {
		return nil, errors.New("implementation repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT id, user_id, client_name, recurring_amount, status, start_date, end_date, delivery_completed, created_at, updated_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	row := r.db.QueryRowContext(ctx, query, id)
	impl, err := scanImplementation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return impl, nil
}

// ListByOwner loads every implementation owned by the user, newest first.
func (r *Repository) ListByOwner(ctx context.Context, userID string) ([]implementations.Implementation, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("implementation repo: nil db")
	}
	if userID == "" {
		return nil, errors.New("implementation repo: empty user id")
	}

	query := fmt.Sprintf(`
SELECT id, user_id, client_name, recurring_amount, status, start_date, end_date, delivery_completed, created_at, updated_at
FROM %s
WHERE user_id = $1
ORDER BY created_at DESC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []implementations.Implementation
	for rows.Next() {
		impl, err := scanImplementation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *impl)
	}
	return result, rows.Err()
}

// Create inserts a new implementation.
func (r *Repository) Create(ctx context.Context, impl *implementations.Implementation) error {
	if r == nil || r.db == nil {
		return errors.New("implementation repo: nil db")
	}
	if impl == nil {
		return errors.New("implementation repo: nil implementation")
	}
	if err := impl.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	user_id,
	client_name,
	recurring_amount,
	status,
	start_date,
	end_date,
	delivery_completed
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		impl.ID,
		impl.UserID,
		impl.ClientName,
		nullFloat(impl.RecurringAmount),
		impl.Status,
		nullDate(impl.StartDate),
		nullDate(impl.EndDate),
		impl.DeliveryCompleted,
	)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if impl.CreatedAt.IsZero() {
		impl.CreatedAt = now
	}
	impl.UpdatedAt = now
	return nil
}

// Update rewrites the mutable fields of an implementation.
func (r *Repository) Update(ctx context.Context, impl *implementations.Implementation) error {
	if r == nil || r.db == nil {
		return errors.New("implementation repo: nil db")
	}
	if impl == nil {
		return errors.New("implementation repo: nil implementation")
	}
	if err := impl.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
UPDATE %s SET
	client_name = $2,
	recurring_amount = $3,
	status = $4,
	start_date = $5,
	end_date = $6,
	delivery_completed = $7,
	updated_at = NOW()
WHERE id = $1`, r.table)

	result, err := r.db.ExecContext(
		ctx,
		query,
		impl.ID,
		impl.ClientName,
		nullFloat(impl.RecurringAmount),
		impl.Status,
		nullDate(impl.StartDate),
		nullDate(impl.EndDate),
		impl.DeliveryCompleted,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return implementations.ErrNotFound
	}
	impl.UpdatedAt = time.Now().UTC()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImplementation(row rowScanner) (*implementations.Implementation, error) {
	var (
		impl      implementations.Implementation
		amount    sql.NullFloat64
		startDate sql.NullTime
		endDate   sql.NullTime
	)
	if err := row.Scan(
		&impl.ID,
		&impl.UserID,
		&impl.ClientName,
		&amount,
		&impl.Status,
		&startDate,
		&endDate,
		&impl.DeliveryCompleted,
		&impl.CreatedAt,
		&impl.UpdatedAt,
	); err != nil {
		return nil, err
	}
	// A NULL amount means no recurrence; it sums and compares as zero.
	if amount.Valid {
		impl.RecurringAmount = amount.Float64
	}
	if startDate.Valid {
		d := implementations.StartOfDay(startDate.Time)
		impl.StartDate = &d
	}
	if endDate.Valid {
		d := implementations.StartOfDay(endDate.Time)
		impl.EndDate = &d
	}
	impl.CreatedAt = impl.CreatedAt.UTC()
	impl.UpdatedAt = impl.UpdatedAt.UTC()
	return &impl, nil
}

func nullFloat(value float64) sql.NullFloat64 {
	if value == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: value, Valid: true}
}

func nullDate(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: value.UTC(), Valid: true}
}
