package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/tasklist/internal/models"
	"github.com/adanyl0v/tasklist/internal/repositories"
)

var now = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

func newRepoWithMock(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresRepository(mock), mock
}

func testSession() *models.Session {
	return &models.Session{
		ID:           "s-1",
		UserID:       "u-1",
		Fingerprint:  `{"client_ip":"127.0.0.1","user_agent":"test"}`,
		RefreshToken: "refresh",
		ExpiresAt:    now.Add(time.Hour),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestReplace_DeletesThenInsertsInTx(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	s := testSession()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM sessions`).
		WithArgs(s.UserID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs(s.ID, s.UserID, s.Fingerprint, s.RefreshToken, s.ExpiresAt, s.CreatedAt, s.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Replace(context.Background(), s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplace_InsertErrorRollsBack(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	s := testSession()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM sessions`).
		WithArgs(s.UserID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs(s.ID, s.UserID, s.Fingerprint, s.RefreshToken, s.ExpiresAt, s.CreatedAt, s.UpdatedAt).
		WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), s)
	assert.ErrorContains(t, err, "failed to insert session: db down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindWithUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	s := testSession()

	mock.ExpectQuery(`(?s)FROM sessions s\s+JOIN users u ON u.id = s.user_id\s+WHERE s.id = \$1`).
		WithArgs(s.ID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "fingerprint", "expires_at", "email"}).
			AddRow(s.UserID, s.Fingerprint, s.ExpiresAt, "alice@example.com"))

	got, err := repo.FindWithUser(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, s.UserID, got.UserID)
	assert.Equal(t, s.Fingerprint, got.Fingerprint)
	assert.Equal(t, "alice@example.com", got.Email)
}

func TestFindWithUser_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM sessions s`).
		WithArgs("gone").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindWithUser(context.Background(), "gone")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestFindByRefreshToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	s := testSession()

	mock.ExpectQuery(`(?s)FROM sessions\s+WHERE refresh_token = \$1 AND\s+fingerprint = \$2`).
		WithArgs(s.RefreshToken, s.Fingerprint).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "expires_at", "created_at", "updated_at"}).
			AddRow(s.ID, s.UserID, s.ExpiresAt, s.CreatedAt, s.UpdatedAt))

	got, err := repo.FindByRefreshToken(context.Background(), s.RefreshToken, s.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestRotate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	expires := now.Add(2 * time.Hour)

	mock.ExpectExec(`(?s)UPDATE sessions\s+SET refresh_token = \$1,.+WHERE id = \$4 AND refresh_token = \$5`).
		WithArgs("new", expires, now, "s-1", "old").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Rotate(context.Background(), "s-1", "old", "new", expires, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotate_AlreadyRotated(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE sessions`).
		WithArgs("new", now, now, "s-1", "old").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Rotate(context.Background(), "s-1", "old", "new", now, now)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDeleteByUserID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM sessions`).
		WithArgs("u-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	affected, err := repo.DeleteByUserID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
}
