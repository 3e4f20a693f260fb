package tasks

import (
	"context"

	"github.com/adanyl0v/tasklist/internal/models"
)

// Repository stores tasks. Every method that takes a task ID also takes
// the owner's user ID and applies both in a single statement, so a task
// of another user is indistinguishable from a missing one.
type Repository interface {
	// ListByOwner returns the user's tasks, newest first.
	ListByOwner(ctx context.Context, userID string) ([]*models.Task, error)
	Insert(ctx context.Context, task *models.Task) error
	// UpdateIfOwned applies the patch and returns the new state, or
	// repositories.ErrNotFound when no row matches both IDs.
	UpdateIfOwned(ctx context.Context, id, userID string, patch models.TaskPatch) (*models.Task, error)
	// DeleteIfOwned returns repositories.ErrNotFound when no row matches
	// both IDs.
	DeleteIfOwned(ctx context.Context, id, userID string) error
}
