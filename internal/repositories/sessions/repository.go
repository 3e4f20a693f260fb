package sessions

import (
	"context"
	"time"

	"github.com/adanyl0v/tasklist/internal/models"
)

// Record is a session joined with the email of its user.
type Record struct {
	models.Session
	Email string
}

type Repository interface {
	// Replace deletes every session of the user and stores the given one.
	Replace(ctx context.Context, session *models.Session) error
	// FindWithUser returns repositories.ErrNotFound when either the
	// session or its user no longer exists.
	FindWithUser(ctx context.Context, sessionID string) (*Record, error)
	FindByRefreshToken(ctx context.Context, refreshToken, fingerprint string) (*models.Session, error)
	// Rotate swaps the refresh token of a session. The old token must
	// still match, so two concurrent refreshes cannot both succeed.
	Rotate(ctx context.Context, sessionID, oldToken, newToken string, expiresAt, updatedAt time.Time) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}
