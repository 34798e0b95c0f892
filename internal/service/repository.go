package service

import (
	"context"
	"taskMap/internal/models/application"
	"taskMap/internal/models/profile"
	"taskMap/internal/models/task"

	"github.com/google/uuid"
)

type TaskRepository interface {
	CreateTask(context.Context, *task.Task) error
	GetTaskByID(context.Context, uuid.UUID) (*task.Task, error)
	ListOpenTasks(context.Context) ([]*task.Task, error)
}

type ApplicationRepository interface {
	CreateApplication(context.Context, *application.Application) error
	ListApplicationsByTask(context.Context, uuid.UUID) ([]*application.Application, error)
}

type ProfileRepository interface {
	GetProfileByID(context.Context, uuid.UUID) (*profile.Profile, error)
	UpsertProfile(context.Context, *profile.Profile) error
}

// Repository реализуют все хранилища: postgres, sqlite и inmemory
type Repository interface {
	TaskRepository
	ApplicationRepository
	ProfileRepository
	HealthCheck(context.Context) error
	Close()
}
