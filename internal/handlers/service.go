package handlers

import (
	"context"
	"taskMap/internal/listing"
	"taskMap/internal/models/application"
	"taskMap/internal/models/profile"
	"taskMap/internal/models/task"
	"taskMap/internal/service"
	"taskMap/internal/worker"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(context.Context) error
	BrowseTasks(context.Context, listing.Filter) listing.View
	CreateTask(context.Context, service.CreateTaskInput) (*service.CreateTaskResult, error)
	GetTask(context.Context, uuid.UUID) (*task.Task, bool, error)
}

type ApplicationService interface {
	ApplyForTask(ctx context.Context, taskID uuid.UUID, message string) (*application.Application, error)
	ListApplications(ctx context.Context, taskID uuid.UUID) ([]*application.Application, error)
}

type ProfileService interface {
	GetProfile(context.Context, uuid.UUID) (*profile.Profile, error)
	UpsertProfile(context.Context, service.ProfileInput) (*profile.Profile, error)
}

// HealthReporter - последний результат фоновой проверки
type HealthReporter interface {
	Last() *worker.Status
}
