package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/adanyl0v/tasklist/internal/models"
	"github.com/adanyl0v/tasklist/internal/repositories"
	"github.com/adanyl0v/tasklist/internal/repositories/users"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare reports whether password matches the encoded hash.
	Compare(password, hash string) (bool, error)
}

type passwordHasherImpl struct {
	params *argon2id.Params
}

// NewPasswordHasher hashes with argon2id. Hashes created by bcrypt are
// still accepted by Compare so accounts imported from older stores can
// log in.
func NewPasswordHasher(params *argon2id.Params) PasswordHasher {
	if params == nil {
		params = argon2id.DefaultParams
	}
	return &passwordHasherImpl{params: params}
}

func (h *passwordHasherImpl) Hash(password string) (string, error) {
	hash, err := argon2id.CreateHash(password, h.params)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func (h *passwordHasherImpl) Compare(password, hash string) (bool, error) {
	if isBcryptHash(hash) {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return false, nil
			}
			return false, fmt.Errorf("failed to compare bcrypt hash: %w", err)
		}
		return true, nil
	}

	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false, fmt.Errorf("failed to compare argon2id hash: %w", err)
	}
	return match, nil
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}

type Credentials struct {
	Email    string
	Password string
}

// CredentialVerifier checks login credentials and returns the user
// they belong to, or ErrInvalidCredentials.
type CredentialVerifier interface {
	Verify(ctx context.Context, creds Credentials) (*models.User, error)
}

type passwordVerifier struct {
	logger    zerolog.Logger
	users     users.Repository
	hasher    PasswordHasher
	dummyHash string
}

func NewPasswordVerifier(
	logger zerolog.Logger,
	userRepo users.Repository,
	hasher PasswordHasher,
) (CredentialVerifier, error) {
	// Unknown emails are compared against this hash so they cost as
	// much as a wrong password.
	dummyHash, err := hasher.Hash("dummy-password-for-unknown-users")
	if err != nil {
		return nil, err
	}

	return &passwordVerifier{
		logger:    logger,
		users:     userRepo,
		hasher:    hasher,
		dummyHash: dummyHash,
	}, nil
}

func (v *passwordVerifier) Verify(ctx context.Context, creds Credentials) (*models.User, error) {
	email := normalizeEmail(creds.Email)

	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_, _ = v.hasher.Compare(creds.Password, v.dummyHash)
			v.logger.Warn().
				Str("email", email).
				Msg("user not found")
			return nil, ErrInvalidCredentials
		}

		v.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to find user by email")
		return nil, err
	}

	match, err := v.hasher.Compare(creds.Password, user.Password)
	if err != nil {
		v.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to compare password")
		return nil, err
	}
	if !match {
		v.logger.Warn().
			Str("user_id", user.ID).
			Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
