package services

import (
	"context"
	"time"

	"github.com/adanyl0v/tasklist/internal/models"
)

type AuthService interface {
	// Register creates a user with the given name, email and password.
	//
	// The email is trimmed and lowercased, and only an argon2id hash of
	// the password is stored.
	//
	// It returns a *ValidationError if the payload breaks the field rules
	// or ErrUserAlreadyExists if the email is already registered.
	Register(ctx context.Context, params RegisterParams) (*models.User, error)

	// Login authenticates the user by email and password.
	//
	// It deletes all sessions of the user, creates a new session bound
	// to the given fingerprint and generates a new token pair.
	//
	// It returns ErrInvalidCredentials for an unknown email and for a
	// wrong password alike.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh rotates the refresh token of the session it belongs to.
	//
	// It returns ErrSessionNotFound if no session matches the token and
	// fingerprint or ErrSessionExpired if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Logout invalidates all sessions of the given user.
	Logout(ctx context.Context, userID string) error

	// ResolveSession turns an access token into the calling identity.
	//
	// Every failure is reported as an error wrapping ErrUnauthorized.
	// jwt.ErrTokenExpired stays in the chain, so callers can fall back
	// to Refresh.
	ResolveSession(ctx context.Context, accessToken, fingerprint string) (*models.Identity, error)
}

type TaskService interface {
	// ListTasks returns the tasks of the user, newest first. A user
	// without tasks gets an empty slice.
	ListTasks(ctx context.Context, userID string) ([]*models.Task, error)

	// CreateTask validates the text and stores a new incomplete task
	// owned by the user.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// UpdateTask applies the patch to a task owned by the user.
	//
	// It returns ErrTaskNotFound if the task does not exist or belongs
	// to another user.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask deletes a task owned by the user.
	//
	// It returns ErrTaskNotFound if the task does not exist or belongs
	// to another user.
	DeleteTask(ctx context.Context, params DeleteTaskParams) error
}

// storageNow returns the current time at the microsecond precision of
// timestamptz, so returned timestamps match what is read back later.
func storageNow() time.Time {
	return time.Now().Truncate(time.Microsecond)
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

type LoginParams struct {
	Email       string
	Password    string
	Fingerprint string
}

type LoginResult struct {
	User                  *models.User
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

type CreateTaskParams struct {
	UserID string
	Text   string
}

type UpdateTaskParams struct {
	ID        string
	UserID    string
	Text      *string
	Completed *bool
}

type DeleteTaskParams struct {
	ID     string
	UserID string
}
