package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskMap/internal/auth"
	"taskMap/internal/logger"
	"taskMap/internal/models/application"
	"taskMap/internal/models/task"
	rep "taskMap/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxMessageLength = 2000

type ApplicationService struct {
	repo Repository
}

func NewApplicationService(repo Repository) *ApplicationService {
	return &ApplicationService{repo: repo}
}

// ApplyForTask без пользователя в контексте ничего не пишет в хранилище.
// Повторный отклик того же исполнителя не запрещён.
func (s *ApplicationService) ApplyForTask(ctx context.Context, taskID uuid.UUID, message string) (*application.Application, error) {
	workerID, ok := auth.UserFromContext(ctx)
	if !ok {
		logger.Info("Service: Отклик без аутентификации", zap.String("task_id", taskID.String()))
		return nil, NewUnauthenticated("apply_for_task")
	}

	message = strings.TrimSpace(message)
	if len([]rune(message)) > maxMessageLength {
		return nil, NewValidationError("message", fmt.Sprintf("длина больше %d", maxMessageLength))
	}

	target, err := s.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("задача", taskID.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	if target.Status != task.StatusOpen {
		return nil, NewBusinessError(CodeInvalidStatus, "Задача не принимает отклики",
			ToDetail("task_id", taskID.String()),
			ToDetail("status", target.Status),
		)
	}

	app := application.New(taskID, workerID, message)
	if err := s.repo.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("задача", taskID.String())
		}
		return nil, fmt.Errorf("создание отклика: %w", err)
	}

	logger.Info("Service: Отклик создан",
		zap.String("application_id", app.ID.String()),
		zap.String("task_id", taskID.String()),
		zap.String("worker_id", workerID.String()))
	return app, nil
}

func (s *ApplicationService) ListApplications(ctx context.Context, taskID uuid.UUID) ([]*application.Application, error) {
	if _, err := s.repo.GetTaskByID(ctx, taskID); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("задача", taskID.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	apps, err := s.repo.ListApplicationsByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("получение откликов: %w", err)
	}
	return apps, nil
}
