package users

import (
	"context"

	"github.com/adanyl0v/tasklist/internal/models"
)

// Repository is the user directory.
type Repository interface {
	// Create inserts the user. It returns repositories.ErrAlreadyExists
	// if the email is taken.
	Create(ctx context.Context, user *models.User) error
	// FindByEmail returns repositories.ErrNotFound for unknown emails.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}
