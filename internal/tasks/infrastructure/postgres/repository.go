package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	tasks "clientdesk/internal/tasks/domain"
)

// Repository is a Postgres task store.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get loads a task by id.
func (r *Repository) Get(ctx context.Context, id string) (*tasks.Task, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("task repo: nil db")
	}
	if id == "" {
		return nil, errors.New("task repo: empty id")
	}

	var task tasks.Task
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, title, notes, scheduled_on, status, created_at, updated_at
FROM tasks
WHERE id = $1
LIMIT 1`, id).Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Notes,
		&task.ScheduledOn,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	normalize(&task)
	return &task, nil
}

// ListByOwner loads the user's tasks, optionally bounded by scheduled date.
func (r *Repository) ListByOwner(ctx context.Context, userID string, from, to *time.Time) ([]tasks.Task, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("task repo: nil db")
	}
	if userID == "" {
		return nil, errors.New("task repo: empty user id")
	}

	query := `
SELECT id, user_id, title, notes, scheduled_on, status, created_at, updated_at
FROM tasks
WHERE user_id = $1`
	args := []any{userID}
	if from != nil {
		args = append(args, tasks.StartOfDay(*from))
		query += " AND scheduled_on >= $2"
	}
	if to != nil {
		args = append(args, tasks.StartOfDay(*to))
		if from != nil {
			query += " AND scheduled_on <= $3"
		} else {
			query += " AND scheduled_on <= $2"
		}
	}
	query += " ORDER BY scheduled_on, created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []tasks.Task
	for rows.Next() {
		var task tasks.Task
		if err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.Notes,
			&task.ScheduledOn,
			&task.Status,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		normalize(&task)
		result = append(result, task)
	}
	return result, rows.Err()
}

// Create inserts a new task.
func (r *Repository) Create(ctx context.Context, task *tasks.Task) error {
	if r == nil || r.db == nil {
		return errors.New("task repo: nil db")
	}
	if task == nil {
		return errors.New("task repo: nil task")
	}
	if err := task.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO tasks (id, user_id, title, notes, scheduled_on, status)
VALUES ($1, $2, $3, $4, $5, $6)`,
		task.ID,
		task.UserID,
		task.Title,
		task.Notes,
		tasks.StartOfDay(task.ScheduledOn),
		task.Status,
	)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	return nil
}

// SetStatus updates the completion status of a task.
func (r *Repository) SetStatus(ctx context.Context, id, status string) error {
	if r == nil || r.db == nil {
		return errors.New("task repo: nil db")
	}
	if !tasks.ValidStatus(status) {
		return errors.New("task repo: invalid status")
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE tasks SET status = $2, updated_at = NOW()
WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return tasks.ErrNotFound
	}
	return nil
}

// Delete removes a task.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("task repo: nil db")
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return tasks.ErrNotFound
	}
	return nil
}

// CountScheduledOn counts the user's tasks scheduled on the given day.
func (r *Repository) CountScheduledOn(ctx context.Context, userID string, day time.Time) (int, error) {
	return r.count(ctx, `
SELECT COUNT(*) FROM tasks
WHERE user_id = $1 AND scheduled_on = $2`, userID, tasks.StartOfDay(day))
}

// CountCompletedOn counts the user's completed tasks scheduled on the given day.
func (r *Repository) CountCompletedOn(ctx context.Context, userID string, day time.Time) (int, error) {
	return r.count(ctx, `
SELECT COUNT(*) FROM tasks
WHERE user_id = $1 AND scheduled_on = $2 AND status = $3`, userID, tasks.StartOfDay(day), tasks.StatusCompleted)
}

// CountCompletedBetween counts the user's completed tasks scheduled in
// the closed range [from, to].
func (r *Repository) CountCompletedBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	return r.count(ctx, `
SELECT COUNT(*) FROM tasks
WHERE user_id = $1 AND status = $2 AND scheduled_on BETWEEN $3 AND $4`,
		userID, tasks.StatusCompleted, tasks.StartOfDay(from), tasks.StartOfDay(to))
}

// CompletedDatesBetween returns the scheduled dates of the user's
// completed tasks in the closed range [from, to], in date order. A
// task contributes one entry per row.
func (r *Repository) CompletedDatesBetween(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("task repo: nil db")
	}
	if userID == "" {
		return nil, errors.New("task repo: empty user id")
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT scheduled_on FROM tasks
WHERE user_id = $1 AND status = $2 AND scheduled_on BETWEEN $3 AND $4
ORDER BY scheduled_on`,
		userID, tasks.StatusCompleted, tasks.StartOfDay(from), tasks.StartOfDay(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		dates = append(dates, tasks.StartOfDay(day))
	}
	return dates, rows.Err()
}

func (r *Repository) count(ctx context.Context, query string, args ...any) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("task repo: nil db")
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func normalize(task *tasks.Task) {
	task.ScheduledOn = tasks.StartOfDay(task.ScheduledOn)
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
}
