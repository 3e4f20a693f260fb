package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/tasklist/internal/models"
	"github.com/adanyl0v/tasklist/internal/repositories"
)

var userColumns = []string{"id", "name", "email", "password", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresRepository(mock), mock
}

func testUser() *models.User {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &models.User{
		ID:        "0190a0b0-0000-7000-8000-000000000001",
		Name:      "Alice",
		Email:     "alice@example.com",
		Password:  "$argon2id$v=19$m=65536,t=1,p=2$c2FsdA$aGFzaA",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := testUser()

	mock.ExpectExec(`(?s)INSERT INTO users \(id,\s+name,\s+email,\s+password,\s+created_at,\s+updated_at\)`).
		WithArgs(u.ID, u.Name, u.Email, u.Password, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := testUser()

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Name, u.Email, u.Password, u.CreatedAt, u.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	err := repo.Create(context.Background(), u)
	assert.ErrorIs(t, err, repositories.ErrAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := testUser()

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Name, u.Email, u.Password, u.CreatedAt, u.UpdatedAt).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), u)
	assert.ErrorContains(t, err, "failed to insert user: db down")
	assert.NotErrorIs(t, err, repositories.ErrAlreadyExists)
}

func TestFindByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := testUser()

	mock.ExpectQuery(`(?s)SELECT .+ FROM users\s+WHERE email = \$1`).
		WithArgs(u.Email).
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow(u.ID, u.Name, u.Email, u.Password, u.CreatedAt, u.UpdatedAt))

	got, err := repo.FindByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM users\s+WHERE email = \$1`).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestFindByID_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := testUser()

	mock.ExpectQuery(`(?s)SELECT .+ FROM users\s+WHERE id = \$1`).
		WithArgs(u.ID).
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow(u.ID, u.Name, u.Email, u.Password, u.CreatedAt, u.UpdatedAt))

	got, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
}

func TestFindByID_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM users\s+WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnError(errors.New("db err"))

	_, err := repo.FindByID(context.Background(), "u-1")
	assert.ErrorContains(t, err, "failed to select user: db err")
}
