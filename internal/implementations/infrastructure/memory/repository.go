package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	implementations "clientdesk/internal/implementations/domain"
)

// Repository is an in-memory implementation store for tests and local runs.
type Repository struct {
	mu   sync.RWMutex
	data map[string]implementations.Implementation
}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{data: make(map[string]implementations.Implementation)}
}

// Get loads an implementation by id.
func (r *Repository) Get(ctx context.Context, id string) (*implementations.Implementation, error) {
	_ = ctx
	r.mu.RLock()
	impl, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &impl, nil
}

// ListByOwner returns the user's implementations, newest first.
func (r *Repository) ListByOwner(ctx context.Context, userID string) ([]implementations.Implementation, error) {
	_ = ctx
	r.mu.RLock()
	var result []implementations.Implementation
	for _, impl := range r.data {
		if impl.UserID == userID {
			result = append(result, impl)
		}
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Create stores a new implementation.
func (r *Repository) Create(ctx context.Context, impl *implementations.Implementation) error {
	_ = ctx
	if impl == nil {
		return implementations.ErrEmptyID
	}
	if err := impl.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if impl.CreatedAt.IsZero() {
		impl.CreatedAt = now
	}
	impl.UpdatedAt = now
	r.mu.Lock()
	r.data[impl.ID] = *impl
	r.mu.Unlock()
	return nil
}

// Update overwrites an existing implementation.
func (r *Repository) Update(ctx context.Context, impl *implementations.Implementation) error {
	_ = ctx
	if impl == nil {
		return implementations.ErrEmptyID
	}
	if err := impl.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[impl.ID]; !ok {
		return implementations.ErrNotFound
	}
	impl.UpdatedAt = time.Now().UTC()
	r.data[impl.ID] = *impl
	return nil
}
