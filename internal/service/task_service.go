package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskMap/internal/auth"
	"taskMap/internal/geo"
	"taskMap/internal/listing"
	"taskMap/internal/logger"
	"taskMap/internal/models/task"
	rep "taskMap/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SampleLookup interface {
	Tasks() []*task.Task
	Find(uuid.UUID) (*task.Task, bool)
}

type CreateTaskInput struct {
	Title         string          `json:"title" validate:"required,max=200"`
	Description   string          `json:"description" validate:"required,max=5000"`
	Category      string          `json:"category" validate:"required,max=50"`
	Price         decimal.Decimal `json:"price"`
	Location      string          `json:"location" validate:"max=200"`
	Latitude      *float64        `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64        `json:"longitude" validate:"omitempty,longitude"`
	EstimatedTime string          `json:"estimated_time" validate:"max=100"`
	Urgency       string          `json:"urgency" validate:"max=50"`
	Images        []string        `json:"images" validate:"max=3,dive,url"`
}

type CreateTaskResult struct {
	Task      *task.Task
	OpenTasks []*task.Task
	// false, если задача создана, но повторная загрузка списка не удалась
	Refreshed bool
}

type TaskService struct {
	repo          Repository
	samples       SampleLookup
	listing       *listing.Builder
	defaultCenter geo.Point
}

// samples может быть nil - тогда примеры нигде не подставляются
func NewTaskService(repo Repository, samples SampleLookup, opts listing.Options, defaultCenter geo.Point) *TaskService {
	s := &TaskService{
		repo:          repo,
		samples:       samples,
		defaultCenter: defaultCenter,
	}
	var sampleSet listing.SampleSet
	if samples != nil {
		sampleSet = samples
	}
	s.listing = listing.NewBuilder(s.FetchOpenTasks, sampleSet, opts)
	return s
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка хранилища: %w", err)
	}
	return nil
}

// FetchOpenTasks - одна попытка, без повторов
func (s *TaskService) FetchOpenTasks(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()
	tasks, err := s.repo.ListOpenTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение открытых задач: %w", err)
	}
	logger.Debug("Service: Открытые задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))
	return tasks, nil
}

func (s *TaskService) BrowseTasks(ctx context.Context, f listing.Filter) listing.View {
	return s.listing.Build(ctx, f)
}

func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*CreateTaskResult, error) {
	posterID, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, NewUnauthenticated("create_task")
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if task.Category(in.Category) == task.CategoryAll {
		return nil, NewValidationError("category", "значение all зарезервировано")
	}
	if !in.Price.IsPositive() {
		return nil, NewValidationError("price", "должна быть больше 0")
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, NewValidationError("latitude", "координаты задаются парой")
	}

	// геокодирование внешнее: без координат ставим центр карты по умолчанию
	lat, lng := s.defaultCenter.Lat, s.defaultCenter.Lng
	if in.Latitude != nil {
		lat, lng = *in.Latitude, *in.Longitude
	}

	newTask := task.New(posterID, in.Title, in.Description, task.Category(in.Category), in.Price,
		task.WithLocation(in.Location),
		task.WithCoordinates(lat, lng),
		task.WithEstimatedTime(in.EstimatedTime),
		task.WithUrgency(in.Urgency),
		task.WithImages(in.Images),
	)

	if err := s.repo.CreateTask(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}
	logger.Info("Service: Задача создана",
		zap.String("task_id", newTask.ID.String()),
		zap.String("poster_id", posterID.String()))

	result := &CreateTaskResult{Task: newTask}
	open, err := s.FetchOpenTasks(ctx)
	if err != nil {
		// создание и перечитывание независимы, список просто остаётся старым
		logger.Warn("Service: Не удалось обновить список после создания", zap.Error(err))
		return result, nil
	}
	result.OpenTasks = open
	result.Refreshed = true
	return result, nil
}

// GetTask ищет задачу в хранилище, затем среди примеров; sample=true для примера
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, bool, error) {
	found, err := s.repo.GetTaskByID(ctx, id)
	if err == nil {
		return found, false, nil
	}
	if !errors.Is(err, rep.ErrNotFound) {
		return nil, false, fmt.Errorf("получение задачи: %w", err)
	}

	if s.samples != nil {
		if sample, ok := s.samples.Find(id); ok {
			return sample, true, nil
		}
	}
	logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
	return nil, false, NewNotFound("задача", id.String())
}
