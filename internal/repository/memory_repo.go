package repository

import (
	"context"
	"sync"
	"time"

	"github.com/brandsight/brandsight-api/internal/models"
)

// MemoryTargetRepository is an in-memory TargetRepository. It is the
// default store when no DATABASE_URL is configured; contents are lost on
// restart.
type MemoryTargetRepository struct {
	mu      sync.RWMutex
	targets map[string]*models.Target
	order   []string
}

// NewMemoryTargetRepository creates an empty in-memory repository.
func NewMemoryTargetRepository() *MemoryTargetRepository {
	return &MemoryTargetRepository{
		targets: make(map[string]*models.Target),
	}
}

func (r *MemoryTargetRepository) Create(_ context.Context, target *models.Target) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.targets[target.ID] = copyTarget(target)
	r.order = append(r.order, target.ID)
	return nil
}

func (r *MemoryTargetRepository) GetByID(_ context.Context, id string) (*models.Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	target, ok := r.targets[id]
	if !ok {
		return nil, ErrTargetNotFound
	}
	return copyTarget(target), nil
}

func (r *MemoryTargetRepository) List(_ context.Context) ([]*models.Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Target, 0, len(r.order))
	for _, id := range r.order {
		if target, ok := r.targets[id]; ok {
			out = append(out, copyTarget(target))
		}
	}
	return out, nil
}

func (r *MemoryTargetRepository) UpdateKeywords(_ context.Context, id string, keywords []models.Keyword) (*models.Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.targets[id]
	if !ok {
		return nil, ErrTargetNotFound
	}
	target.Keywords = append([]models.Keyword(nil), keywords...)
	target.UpdatedAt = time.Now().UTC()
	return copyTarget(target), nil
}

func (r *MemoryTargetRepository) UpdatePrompts(_ context.Context, id string, prompts []models.Prompt) (*models.Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.targets[id]
	if !ok {
		return nil, ErrTargetNotFound
	}
	target.Prompts = append([]models.Prompt(nil), prompts...)
	target.UpdatedAt = time.Now().UTC()
	return copyTarget(target), nil
}

func (r *MemoryTargetRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.targets[id]; !ok {
		return ErrTargetNotFound
	}
	delete(r.targets, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// copyTarget returns a deep copy so callers cannot mutate stored state.
func copyTarget(t *models.Target) *models.Target {
	cp := *t
	cp.Keywords = append([]models.Keyword(nil), t.Keywords...)
	cp.Prompts = append([]models.Prompt(nil), t.Prompts...)
	return &cp
}
