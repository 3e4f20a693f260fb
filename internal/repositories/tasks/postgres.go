package tasks

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
	db  dbx.DBTX
	now func() time.Time
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Task, error) {
	const selectTasksByUserIDQuery = `
SELECT id,
       text,
       completed,
       created_at,
       updated_at
FROM tasks
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
`
	rows, err := r.db.Query(ctx, selectTasksByUserIDQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task := &models.Task{UserID: userID}
		err = rows.Scan(
			&task.ID,
			&task.Text,
			&task.Completed,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over tasks: %w", err)
	}
	return tasks, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, task *models.Task) error {
	const insertTaskQuery = `
INSERT INTO tasks (id,
                   user_id,
                   text,
                   completed,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := r.db.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.UserID,
		task.Text,
		task.Completed,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateIfOwned(
	ctx context.Context,
	id, userID string,
	patch models.TaskPatch,
) (*models.Task, error) {
	// updated_at only moves when at least one field is present.
	const updateTaskQuery = `
UPDATE tasks
SET text = COALESCE($1::text, text),
    completed = COALESCE($2::boolean, completed),
    updated_at = CASE WHEN $1::text IS NULL AND $2::boolean IS NULL THEN updated_at ELSE $3 END
WHERE id = $4 AND user_id = $5
RETURNING text, completed, created_at, updated_at
`
	task := &models.Task{
		ID:     id,
		UserID: userID,
	}
	err := r.db.QueryRow(
		ctx,
		updateTaskQuery,
		patch.Text,
		patch.Completed,
		r.now(),
		id,
		userID,
	).Scan(
		&task.Text,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (r *PostgresRepository) DeleteIfOwned(ctx context.Context, id, userID string) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := r.db.Exec(ctx, deleteTaskQuery, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
