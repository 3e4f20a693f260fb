package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/tasklist/internal/dbx"
	"github.com/adanyl0v/tasklist/internal/models"
	"github.com/adanyl0v/tasklist/internal/repositories"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Replace(ctx context.Context, session *models.Session) error {
	return dbx.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		const deleteSessionsByUserIDQuery = `
DELETE FROM sessions
WHERE user_id = $1
`
		_, err := tx.Exec(ctx, deleteSessionsByUserIDQuery, session.UserID)
		if err != nil {
			return fmt.Errorf("failed to delete sessions: %w", err)
		}

		const insertSessionQuery = `
INSERT INTO sessions (id,
                      user_id,
                      fingerprint,
                      refresh_token,
                      expires_at,
                      created_at,
                      updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
		_, err = tx.Exec(
			ctx,
			insertSessionQuery,
			session.ID,
			session.UserID,
			session.Fingerprint,
			session.RefreshToken,
			session.ExpiresAt,
			session.CreatedAt,
			session.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) FindWithUser(ctx context.Context, sessionID string) (*Record, error) {
	const selectSessionWithUserQuery = `
SELECT s.user_id,
       s.fingerprint,
       s.expires_at,
       u.email
FROM sessions s
JOIN users u ON u.id = s.user_id
WHERE s.id = $1
`
	record := &Record{Session: models.Session{ID: sessionID}}
	err := r.db.QueryRow(ctx, selectSessionWithUserQuery, sessionID).Scan(
		&record.UserID,
		&record.Fingerprint,
		&record.ExpiresAt,
		&record.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select session: %w", err)
	}
	return record, nil
}

func (r *PostgresRepository) FindByRefreshToken(
	ctx context.Context,
	refreshToken, fingerprint string,
) (*models.Session, error) {
	const selectSessionByRefreshTokenQuery = `
SELECT id,
       user_id,
       expires_at,
       created_at,
       updated_at
FROM sessions
WHERE refresh_token = $1 AND
      fingerprint = $2
`
	session := &models.Session{
		RefreshToken: refreshToken,
		Fingerprint:  fingerprint,
	}
	err := r.db.QueryRow(ctx, selectSessionByRefreshTokenQuery, refreshToken, fingerprint).Scan(
		&session.ID,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select session by refresh token: %w", err)
	}
	return session, nil
}

func (r *PostgresRepository) Rotate(
	ctx context.Context,
	sessionID, oldToken, newToken string,
	expiresAt, updatedAt time.Time,
) error {
	const updateSessionQuery = `
UPDATE sessions
SET refresh_token = $1,
    expires_at = $2,
    updated_at = $3
WHERE id = $4 AND refresh_token = $5
`
	tag, err := r.db.Exec(ctx, updateSessionQuery, newToken, expiresAt, updatedAt, sessionID, oldToken)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	const deleteSessionsByUserIDQuery = `
DELETE FROM sessions
WHERE user_id = $1
`
	tag, err := r.db.Exec(ctx, deleteSessionsByUserIDQuery, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
