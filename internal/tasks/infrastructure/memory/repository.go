package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	tasks "clientdesk/internal/tasks/domain"
)

// Repository is an in-memory task store for tests and local runs.
type Repository struct {
	mu   sync.RWMutex
	data map[string]tasks.Task
}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{data: make(map[string]tasks.Task)}
}

// Get loads a task by id.
func (r *Repository) Get(ctx context.Context, id string) (*tasks.Task, error) {
	_ = ctx
	r.mu.RLock()
	task, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &task, nil
}

// ListByOwner returns the user's tasks in scheduled-date order.
func (r *Repository) ListByOwner(ctx context.Context, userID string, from, to *time.Time) ([]tasks.Task, error) {
	_ = ctx
	r.mu.RLock()
	var result []tasks.Task
	for _, task := range r.data {
		if task.UserID != userID {
			continue
		}
		if from != nil && task.ScheduledOn.Before(tasks.StartOfDay(*from)) {
			continue
		}
		if to != nil && task.ScheduledOn.After(tasks.StartOfDay(*to)) {
			continue
		}
		result = append(result, task)
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		return result[i].ScheduledOn.Before(result[j].ScheduledOn)
	})
	return result, nil
}

// Create stores a new task.
func (r *Repository) Create(ctx context.Context, task *tasks.Task) error {
	_ = ctx
	if err := task.Validate(); err != nil {
		return err
	}
	task.ScheduledOn = tasks.StartOfDay(task.ScheduledOn)
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	r.mu.Lock()
	r.data[task.ID] = *task
	r.mu.Unlock()
	return nil
}

// SetStatus updates a task's completion status.
func (r *Repository) SetStatus(ctx context.Context, id, status string) error {
	_ = ctx
	if !tasks.ValidStatus(status) {
		return errors.New("task repo: invalid status")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.data[id]
	if !ok {
		return tasks.ErrNotFound
	}
	task.Status = status
	task.UpdatedAt = time.Now().UTC()
	r.data[id] = task
	return nil
}

// Delete removes a task.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return tasks.ErrNotFound
	}
	delete(r.data, id)
	return nil
}
