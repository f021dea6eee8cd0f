package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	prospects "clientdesk/internal/prospects/domain"
)

// Repository is an in-memory prospect store used in tests.
type Repository struct {
	mu    sync.RWMutex
	items map[string]prospects.Prospect
}

func NewRepository() *Repository {
	return &Repository{items: make(map[string]prospects.Prospect)}
}

func (r *Repository) Get(_ context.Context, id string) (*prospects.Prospect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prospect, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &prospect, nil
}

func (r *Repository) ListByOwner(_ context.Context, userID, status string) ([]prospects.Prospect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []prospects.Prospect
	for _, prospect := range r.items {
		if prospect.UserID != userID {
			continue
		}
		if status != "" && prospect.Status != status {
			continue
		}
		result = append(result, prospect)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *Repository) Create(_ context.Context, prospect *prospects.Prospect) error {
	if err := prospect.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if prospect.CreatedAt.IsZero() {
		prospect.CreatedAt = now
	}
	prospect.UpdatedAt = now
	r.items[prospect.ID] = *prospect
	return nil
}

func (r *Repository) UpdateStatus(_ context.Context, id, status string) error {
	if !prospects.ValidStatus(status) {
		return prospects.ErrInvalidStatus
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prospect, ok := r.items[id]
	if !ok {
		return prospects.ErrNotFound
	}
	prospect.Status = status
	prospect.UpdatedAt = time.Now().UTC()
	r.items[id] = prospect
	return nil
}
