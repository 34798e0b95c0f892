package inmemory

import (
	"context"
	"slices"
	"sync"
	"taskMap/internal/logger"
	"taskMap/internal/models/application"
	"taskMap/internal/models/profile"
	"taskMap/internal/models/task"
	repo "taskMap/internal/repository"
	"time"

	"github.com/google/uuid"
)

type Storage struct {
	mtx          *sync.RWMutex
	tasks        map[uuid.UUID]*task.Task
	taskIDs      []uuid.UUID
	applications map[uuid.UUID]*application.Application
	appIDs       []uuid.UUID
	profiles     map[uuid.UUID]*profile.Profile
	now          func() time.Time
}

func New() *Storage {
	return &Storage{
		mtx:          &sync.RWMutex{},
		tasks:        make(map[uuid.UUID]*task.Task),
		taskIDs:      []uuid.UUID{},
		applications: make(map[uuid.UUID]*application.Application),
		appIDs:       []uuid.UUID{},
		profiles:     make(map[uuid.UUID]*profile.Profile),
		now:          time.Now,
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) Close() {}

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if taskToCreate.ID == uuid.Nil {
		taskToCreate.ID = uuid.New()
	}
	if _, exists := s.tasks[taskToCreate.ID]; exists {
		return repo.ErrConflict
	}
	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = s.now()
	}
	if taskToCreate.Images == nil {
		taskToCreate.Images = []string{}
	}

	stored := *taskToCreate
	stored.Poster = nil
	stored.Images = slices.Clone(taskToCreate.Images)
	s.tasks[stored.ID] = &stored
	s.taskIDs = append(s.taskIDs, stored.ID)
	return nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return s.withPoster(stored), nil
}

// открытые задачи, сначала новые
func (s *Storage) ListOpenTasks(ctx context.Context) ([]*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for i := len(s.taskIDs) - 1; i >= 0; i-- {
		stored := s.tasks[s.taskIDs[i]]
		if stored.Status != task.StatusOpen {
			continue
		}
		res = append(res, s.withPoster(stored))
	}
	slices.SortStableFunc(res, func(a, b *task.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return res, nil
}

func (s *Storage) withPoster(stored *task.Task) *task.Task {
	out := *stored
	out.Images = slices.Clone(stored.Images)
	out.Poster = nil
	if p, ok := s.profiles[stored.PosterID]; ok {
		out.Poster = &task.PosterSummary{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Rating:    p.Rating,
		}
	}
	return &out
}

func (s *Storage) CreateApplication(ctx context.Context, app *application.Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()

	// аналог внешнего ключа task_applications.task_id
	if _, ok := s.tasks[app.TaskID]; !ok {
		return repo.ErrNotFound
	}
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if _, exists := s.applications[app.ID]; exists {
		return repo.ErrConflict
	}
	app.AppliedAt = s.now()

	stored := *app
	stored.Worker = nil
	s.applications[stored.ID] = &stored
	s.appIDs = append(s.appIDs, stored.ID)
	return nil
}

func (s *Storage) ListApplicationsByTask(ctx context.Context, taskID uuid.UUID) ([]*application.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*application.Application{}
	for i := len(s.appIDs) - 1; i >= 0; i-- {
		stored := s.applications[s.appIDs[i]]
		if stored.TaskID != taskID {
			continue
		}
		out := *stored
		if p, ok := s.profiles[stored.WorkerID]; ok {
			out.Worker = &application.WorkerSummary{
				FirstName: p.FirstName,
				LastName:  p.LastName,
				Rating:    p.Rating,
				Latitude:  p.Latitude,
				Longitude: p.Longitude,
			}
		}
		res = append(res, &out)
	}
	slices.SortStableFunc(res, func(a, b *application.Application) int {
		return b.AppliedAt.Compare(a.AppliedAt)
	})
	return res, nil
}

func (s *Storage) GetProfileByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (s *Storage) UpsertProfile(ctx context.Context, p *profile.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	if existing, ok := s.profiles[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
		p.Rating = existing.Rating
		p.TotalRatings = existing.TotalRatings
		p.UpdatedAt = &now
	} else {
		p.CreatedAt = now
	}

	stored := *p
	s.profiles[p.ID] = &stored
	return nil
}
