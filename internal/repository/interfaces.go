// Package repository defines storage interfaces and their implementations.
package repository

import (
	"context"
	"errors"

	"github.com/brandsight/brandsight-api/internal/models"
)

// ErrTargetNotFound is returned when a target ID does not exist.
var ErrTargetNotFound = errors.New("target not found")

// TargetRepository manages visibility analysis targets.
type TargetRepository interface {
	// Create stores a new target. The target's ID, CreatedAt and UpdatedAt
	// must already be set by the caller.
	Create(ctx context.Context, target *models.Target) error

	// GetByID retrieves a target. Returns ErrTargetNotFound if missing.
	GetByID(ctx context.Context, id string) (*models.Target, error)

	// List returns all targets ordered by creation time.
	List(ctx context.Context) ([]*models.Target, error)

	// UpdateKeywords replaces a target's keywords and bumps UpdatedAt.
	// Returns the updated target or ErrTargetNotFound.
	UpdateKeywords(ctx context.Context, id string, keywords []models.Keyword) (*models.Target, error)

	// UpdatePrompts replaces a target's prompts and bumps UpdatedAt.
	// Returns the updated target or ErrTargetNotFound.
	UpdatePrompts(ctx context.Context, id string, prompts []models.Prompt) (*models.Target, error)

	// Delete removes a target. Returns ErrTargetNotFound if missing.
	Delete(ctx context.Context, id string) error
}
