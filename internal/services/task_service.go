package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/tasklist/internal/models"
	"github.com/adanyl0v/tasklist/internal/repositories"
	"github.com/adanyl0v/tasklist/internal/repositories/tasks"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	tasks  tasks.Repository
	now    func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	taskRepo tasks.Repository,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		tasks:  taskRepo,
		now:    storageNow,
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	list, err := s.tasks.ListByOwner(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to list tasks")
		return nil, err
	}
	if list == nil {
		list = make([]*models.Task, 0)
	}

	s.logger.Debug().
		Int("count", len(list)).
		Str("user_id", userID).
		Msg("listed tasks")
	return list, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	text, err := normalizeTaskText(params.Text)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("user_id", params.UserID).
			Msg("invalid task text")
		return nil, err
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}

	now := s.now()
	task := &models.Task{
		ID:        taskUUID.String(),
		UserID:    params.UserID,
		Text:      text,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.tasks.Insert(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", task.UserID).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	id, err := parseTaskID(params.ID)
	if err != nil {
		return nil, err
	}

	patch := models.TaskPatch{Completed: params.Completed}
	if params.Text != nil {
		text, err := normalizeTaskText(*params.Text)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("task_id", id).
				Msg("invalid task text")
			return nil, err
		}
		patch.Text = &text
	}

	if patch.IsEmpty() {
		s.logger.Debug().
			Str("task_id", id).
			Msg("no fields to update")
	}

	task, err := s.tasks.UpdateIfOwned(ctx, id, params.UserID, patch)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Warn().
				Str("task_id", id).
				Str("user_id", params.UserID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, params DeleteTaskParams) error {
	id, err := parseTaskID(params.ID)
	if err != nil {
		return err
	}

	err = s.tasks.DeleteIfOwned(ctx, id, params.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Warn().
				Str("task_id", id).
				Str("user_id", params.UserID).
				Msg("task not found")
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Str("task_id", id).
		Str("user_id", params.UserID).
		Msg("deleted task")
	return nil
}
