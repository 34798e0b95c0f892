package service_test

import (
	"context"
	"errors"
	"taskMap/internal/auth"
	"taskMap/internal/geo"
	"taskMap/internal/listing"
	"taskMap/internal/models/application"
	"taskMap/internal/models/profile"
	"taskMap/internal/models/task"
	rep "taskMap/internal/repository"
	"taskMap/internal/service"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository - мок хранилища
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateTask(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockRepository) ListOpenTasks(ctx context.Context) ([]*task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockRepository) CreateApplication(ctx context.Context, a *application.Application) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockRepository) ListApplicationsByTask(ctx context.Context, taskID uuid.UUID) ([]*application.Application, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*application.Application), args.Error(1)
}

func (m *MockRepository) GetProfileByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *MockRepository) UpsertProfile(ctx context.Context, p *profile.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRepository) Close() {}

var _ service.Repository = (*MockRepository)(nil)

type stubSamples struct {
	tasks []*task.Task
}

func (s stubSamples) Tasks() []*task.Task { return s.tasks }

func (s stubSamples) Find(id uuid.UUID) (*task.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

var defaultCenter = geo.Point{Lat: 40.7128, Lng: -74.0060}

func newTaskService(repo service.Repository, samples service.SampleLookup, fallback bool) *service.TaskService {
	return service.NewTaskService(repo, samples, listing.Options{Mode: listing.ModeLive, Fallback: fallback}, defaultCenter)
}

func openTask(title string, category task.Category) *task.Task {
	t := task.New(uuid.New(), title, "описание", category, decimal.NewFromInt(25))
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	return t
}

func floatPtr(f float64) *float64 { return &f }

func TestTaskService_HealthCheck(t *testing.T) {
	repo := new(MockRepository)
	repo.On("HealthCheck", mock.Anything).Return(errors.New("connection refused")).Once()
	repo.On("HealthCheck", mock.Anything).Return(nil).Once()

	svc := newTaskService(repo, nil, false)

	err := svc.HealthCheck(context.Background())
	assert.ErrorContains(t, err, "connection refused")
	assert.NoError(t, svc.HealthCheck(context.Background()))
	repo.AssertExpectations(t)
}

func TestTaskService_FetchOpenTasks(t *testing.T) {
	t.Run("single attempt on error", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListOpenTasks", mock.Anything).Return(nil, errors.New("timeout")).Once()

		svc := newTaskService(repo, nil, false)
		tasks, err := svc.FetchOpenTasks(context.Background())

		assert.Error(t, err)
		assert.Nil(t, tasks)
		repo.AssertNumberOfCalls(t, "ListOpenTasks", 1)
	})

	t.Run("returns repository order", func(t *testing.T) {
		newer, older := openTask("B", "delivery"), openTask("A", "cleaning")
		repo := new(MockRepository)
		repo.On("ListOpenTasks", mock.Anything).Return([]*task.Task{newer, older}, nil)

		svc := newTaskService(repo, nil, false)
		tasks, err := svc.FetchOpenTasks(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []*task.Task{newer, older}, tasks)
	})
}

func TestTaskService_CreateTask(t *testing.T) {
	userID := uuid.New()
	authed := auth.WithUser(context.Background(), userID)

	validInput := func() service.CreateTaskInput {
		return service.CreateTaskInput{
			Title:       "  Mow the lawn ",
			Description: "Front and back yard",
			Category:    "Gardening",
			Price:       decimal.RequireFromString("40.00"),
			Location:    "Queens, NY",
		}
	}

	t.Run("success with refetch", func(t *testing.T) {
		repo := new(MockRepository)
		existing := openTask("Existing", "cleaning")

		var created *task.Task
		repo.On("CreateTask", mock.Anything, mock.AnythingOfType("*task.Task")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*task.Task)
				created.ID = uuid.New()
				created.CreatedAt = time.Now()
			}).
			Return(nil)
		repo.On("ListOpenTasks", mock.Anything).Return([]*task.Task{existing}, nil)

		svc := newTaskService(repo, nil, false)
		result, err := svc.CreateTask(authed, validInput())

		require.NoError(t, err)
		assert.True(t, result.Refreshed)
		assert.Equal(t, "Mow the lawn", result.Task.Title)
		assert.Equal(t, task.Category("gardening"), result.Task.Category)
		assert.Equal(t, task.StatusOpen, result.Task.Status)
		assert.Equal(t, userID, result.Task.PosterID)
		assert.Equal(t, defaultCenter.Lat, result.Task.Latitude)
		assert.Equal(t, defaultCenter.Lng, result.Task.Longitude)
		assert.Equal(t, created.ID, result.Task.ID)
		assert.Equal(t, []*task.Task{existing}, result.OpenTasks)
		repo.AssertExpectations(t)
	})

	t.Run("explicit coordinates", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("CreateTask", mock.Anything, mock.Anything).Return(nil)
		repo.On("ListOpenTasks", mock.Anything).Return([]*task.Task{}, nil)

		in := validInput()
		in.Latitude, in.Longitude = floatPtr(40.7589), floatPtr(-73.9851)

		result, err := newTaskService(repo, nil, false).CreateTask(authed, in)
		require.NoError(t, err)
		assert.Equal(t, 40.7589, result.Task.Latitude)
		assert.Equal(t, -73.9851, result.Task.Longitude)
	})

	t.Run("refetch failure keeps created task", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("CreateTask", mock.Anything, mock.Anything).Return(nil)
		repo.On("ListOpenTasks", mock.Anything).Return(nil, errors.New("network down"))

		result, err := newTaskService(repo, nil, false).CreateTask(authed, validInput())

		require.NoError(t, err)
		assert.False(t, result.Refreshed)
		assert.NotNil(t, result.Task)
		assert.Nil(t, result.OpenTasks)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("CreateTask", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

		_, err := newTaskService(repo, nil, false).CreateTask(authed, validInput())

		assert.ErrorContains(t, err, "insert failed")
		repo.AssertNotCalled(t, "ListOpenTasks", mock.Anything)
	})

	invalid := []struct {
		name  string
		ctx   context.Context
		edit  func(*service.CreateTaskInput)
		code  string
		field string
	}{
		{"unauthenticated", context.Background(), func(*service.CreateTaskInput) {}, service.CodeUnauthenticated, ""},
		{"empty title", authed, func(in *service.CreateTaskInput) { in.Title = "   " }, service.CodeValidation, "title"},
		{"zero price", authed, func(in *service.CreateTaskInput) { in.Price = decimal.Zero }, service.CodeValidation, "price"},
		{"negative price", authed, func(in *service.CreateTaskInput) { in.Price = decimal.NewFromInt(-5) }, service.CodeValidation, "price"},
		{"reserved category", authed, func(in *service.CreateTaskInput) { in.Category = "ALL" }, service.CodeValidation, "category"},
		{"half coordinates", authed, func(in *service.CreateTaskInput) { in.Latitude = floatPtr(10) }, service.CodeValidation, "latitude"},
		{"latitude out of range", authed, func(in *service.CreateTaskInput) {
			in.Latitude, in.Longitude = floatPtr(91), floatPtr(0)
		}, service.CodeValidation, "latitude"},
		{"too many images", authed, func(in *service.CreateTaskInput) {
			in.Images = []string{"https://a/1.jpg", "https://a/2.jpg", "https://a/3.jpg", "https://a/4.jpg"}
		}, service.CodeValidation, "images"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			in := validInput()
			tt.edit(&in)

			_, err := newTaskService(repo, nil, false).CreateTask(tt.ctx, in)

			var busErr *service.BusinessError
			require.ErrorAs(t, err, &busErr)
			assert.Equal(t, tt.code, busErr.Code)
			if tt.field != "" {
				assert.Equal(t, tt.field, busErr.Details["field"])
			}
			repo.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
		})
	}
}

func TestTaskService_GetTask(t *testing.T) {
	stored := openTask("Stored", "cleaning")
	sample := openTask("Sample", "delivery")
	missing := uuid.New()

	repo := new(MockRepository)
	repo.On("GetTaskByID", mock.Anything, stored.ID).Return(stored, nil)
	repo.On("GetTaskByID", mock.Anything, sample.ID).Return(nil, rep.ErrNotFound)
	repo.On("GetTaskByID", mock.Anything, missing).Return(nil, rep.ErrNotFound)

	svc := newTaskService(repo, stubSamples{tasks: []*task.Task{sample}}, true)

	got, isSample, err := svc.GetTask(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.False(t, isSample)
	assert.Equal(t, stored, got)

	got, isSample, err = svc.GetTask(context.Background(), sample.ID)
	require.NoError(t, err)
	assert.True(t, isSample)
	assert.Equal(t, sample.ID, got.ID)

	_, _, err = svc.GetTask(context.Background(), missing)
	assert.True(t, service.IsCode(err, service.CodeNotFound))
}

func TestTaskService_BrowseTasks(t *testing.T) {
	sample := openTask("Sample cleaning", "cleaning")

	t.Run("live data", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListOpenTasks", mock.Anything).Return([]*task.Task{
			openTask("House Cleaning", "cleaning"),
			openTask("Grocery Delivery", "delivery"),
		}, nil)

		view := newTaskService(repo, stubSamples{tasks: []*task.Task{sample}}, true).
			BrowseTasks(context.Background(), listing.Filter{Search: "clean"})

		assert.Equal(t, listing.SourceLive, view.Source)
		require.Len(t, view.Tasks, 1)
		assert.Equal(t, "House Cleaning", view.Tasks[0].Title)
		assert.Equal(t, 2, view.Total)
	})

	t.Run("failure falls back to flagged samples", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListOpenTasks", mock.Anything).Return(nil, errors.New("boom"))

		view := newTaskService(repo, stubSamples{tasks: []*task.Task{sample}}, true).
			BrowseTasks(context.Background(), listing.Filter{})

		assert.Equal(t, listing.SourceSample, view.Source)
		assert.Len(t, view.Tasks, 1)
		assert.Contains(t, view.Error, "boom")
	})
}

func TestApplicationService_ApplyForTask(t *testing.T) {
	workerID := uuid.New()
	authed := auth.WithUser(context.Background(), workerID)
	target := openTask("Dog walking", "pet-care")

	t.Run("unauthenticated never writes", func(t *testing.T) {
		repo := new(MockRepository)
		svc := service.NewApplicationService(repo)

		app, err := svc.ApplyForTask(context.Background(), target.ID, "I can help")

		assert.Nil(t, app)
		assert.True(t, service.IsCode(err, service.CodeUnauthenticated))
		repo.AssertNotCalled(t, "CreateApplication", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "GetTaskByID", mock.Anything, mock.Anything)
	})

	t.Run("creates pending application", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetTaskByID", mock.Anything, target.ID).Return(target, nil)
		repo.On("CreateApplication", mock.Anything, mock.MatchedBy(func(a *application.Application) bool {
			return a.TaskID == target.ID && a.WorkerID == workerID &&
				a.Status == application.StatusPending && a.Message == "I can help"
		})).Return(nil)

		app, err := service.NewApplicationService(repo).ApplyForTask(authed, target.ID, "  I can help ")

		require.NoError(t, err)
		assert.Equal(t, application.StatusPending, app.Status)
		repo.AssertExpectations(t)
	})

	t.Run("empty message is allowed", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetTaskByID", mock.Anything, target.ID).Return(target, nil)
		repo.On("CreateApplication", mock.Anything, mock.Anything).Return(nil)

		app, err := service.NewApplicationService(repo).ApplyForTask(authed, target.ID, "")
		require.NoError(t, err)
		assert.Empty(t, app.Message)
	})

	t.Run("duplicate applications are allowed", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetTaskByID", mock.Anything, target.ID).Return(target, nil)
		repo.On("CreateApplication", mock.Anything, mock.Anything).Return(nil).Twice()

		svc := service.NewApplicationService(repo)
		_, err := svc.ApplyForTask(authed, target.ID, "first")
		require.NoError(t, err)
		_, err = svc.ApplyForTask(authed, target.ID, "second")
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "CreateApplication", 2)
	})

	t.Run("missing task", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetTaskByID", mock.Anything, target.ID).Return(nil, rep.ErrNotFound)

		_, err := service.NewApplicationService(repo).ApplyForTask(authed, target.ID, "")
		assert.True(t, service.IsCode(err, service.CodeNotFound))
		repo.AssertNotCalled(t, "CreateApplication", mock.Anything, mock.Anything)
	})

	t.Run("task deleted before insert", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetTaskByID", mock.Anything, target.ID).Return(target, nil)
		repo.On("CreateApplication", mock.Anything, mock.Anything).Return(rep.ErrNotFound)

		_, err := service.NewApplicationService(repo).ApplyForTask(authed, target.ID, "")
		assert.True(t, service.IsCode(err, service.CodeNotFound))
	})

	t.Run("task not open", func(t *testing.T) {
		closed := openTask("Done", "cleaning")
		closed.Status = task.StatusCompleted
		repo := new(MockRepository)
		repo.On("GetTaskByID", mock.Anything, closed.ID).Return(closed, nil)

		_, err := service.NewApplicationService(repo).ApplyForTask(authed, closed.ID, "")
		assert.True(t, service.IsCode(err, service.CodeInvalidStatus))
	})
}

func TestApplicationService_ListApplications(t *testing.T) {
	target := openTask("Assemble desk", "handyman")
	apps := []*application.Application{application.New(target.ID, uuid.New(), "hi")}

	repo := new(MockRepository)
	repo.On("GetTaskByID", mock.Anything, target.ID).Return(target, nil)
	repo.On("ListApplicationsByTask", mock.Anything, target.ID).Return(apps, nil)

	got, err := service.NewApplicationService(repo).ListApplications(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, apps, got)
}

func TestProfileService(t *testing.T) {
	userID := uuid.New()

	t.Run("get missing profile", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetProfileByID", mock.Anything, userID).Return(nil, rep.ErrNotFound)

		_, err := service.NewProfileService(repo).GetProfile(context.Background(), userID)
		assert.True(t, service.IsCode(err, service.CodeNotFound))
	})

	t.Run("upsert uses caller id and default role", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("UpsertProfile", mock.Anything, mock.MatchedBy(func(p *profile.Profile) bool {
			return p.ID == userID && p.Role == profile.RoleBoth && p.FirstName == "Sarah"
		})).Return(nil)

		p, err := service.NewProfileService(repo).UpsertProfile(auth.WithUser(context.Background(), userID),
			service.ProfileInput{FirstName: " Sarah ", LastName: "Miller"})

		require.NoError(t, err)
		assert.Equal(t, "Sarah M.", p.DisplayName())
		repo.AssertExpectations(t)
	})

	t.Run("upsert requires auth", func(t *testing.T) {
		repo := new(MockRepository)
		_, err := service.NewProfileService(repo).UpsertProfile(context.Background(), service.ProfileInput{FirstName: "X"})
		assert.True(t, service.IsCode(err, service.CodeUnauthenticated))
		repo.AssertNotCalled(t, "UpsertProfile", mock.Anything, mock.Anything)
	})

	t.Run("invalid role", func(t *testing.T) {
		repo := new(MockRepository)
		_, err := service.NewProfileService(repo).UpsertProfile(auth.WithUser(context.Background(), userID),
			service.ProfileInput{FirstName: "X", Role: "admin"})
		assert.True(t, service.IsCode(err, service.CodeValidation))
	})
}
