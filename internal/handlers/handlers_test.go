package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"taskMap/internal/geo"
	"taskMap/internal/handlers"
	"taskMap/internal/handlers/dto"
	"taskMap/internal/listing"
	"taskMap/internal/models/application"
	"taskMap/internal/models/profile"
	"taskMap/internal/models/task"
	"taskMap/internal/service"
	"taskMap/internal/worker"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskService - мок сервиса задач
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskService) BrowseTasks(ctx context.Context, f listing.Filter) listing.View {
	args := m.Called(ctx, f)
	return args.Get(0).(listing.View)
}

func (m *MockTaskService) CreateTask(ctx context.Context, in service.CreateTaskInput) (*service.CreateTaskResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CreateTaskResult), args.Error(1)
}

func (m *MockTaskService) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*task.Task), args.Bool(1), args.Error(2)
}

type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) ApplyForTask(ctx context.Context, taskID uuid.UUID, message string) (*application.Application, error) {
	args := m.Called(ctx, taskID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.Application), args.Error(1)
}

func (m *MockApplicationService) ListApplications(ctx context.Context, taskID uuid.UUID) ([]*application.Application, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*application.Application), args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *MockProfileService) UpsertProfile(ctx context.Context, in service.ProfileInput) (*profile.Profile, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

type stubReporter struct{ last *worker.Status }

func (s stubReporter) Last() *worker.Status { return s.last }

var (
	_ handlers.TaskService        = (*MockTaskService)(nil)
	_ handlers.ApplicationService = (*MockApplicationService)(nil)
	_ handlers.ProfileService     = (*MockProfileService)(nil)
)

type fixture struct {
	tasks    *MockTaskService
	apps     *MockApplicationService
	profiles *MockProfileService
	router   http.Handler
}

func newFixture(reporter handlers.HealthReporter) *fixture {
	f := &fixture{
		tasks:    new(MockTaskService),
		apps:     new(MockApplicationService),
		profiles: new(MockProfileService),
	}
	center := geo.Point{Lat: 40.7128, Lng: -74.0060}
	f.router = handlers.NewRouter(handlers.Handlers{
		Tasks:        handlers.NewTaskHandler(f.tasks, geo.NewGeoJSONRenderer(center, 12), geo.ContextLocator{}),
		Applications: handlers.NewApplicationHandler(f.apps),
		Profiles:     handlers.NewProfileHandler(f.profiles),
		Health:       handlers.NewHealthHandler(f.tasks, reporter),
	})
	return f
}

func (f *fixture) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.tasks.AssertExpectations(t)
	f.apps.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
}

func sampleTask() *task.Task {
	return &task.Task{
		ID:        uuid.New(),
		Title:     "House Cleaning",
		Category:  "cleaning",
		Price:     decimal.RequireFromString("80.00"),
		Status:    task.StatusOpen,
		Latitude:  40.7128,
		Longitude: -74.0060,
		CreatedAt: time.Now(),
		Poster:    &task.PosterSummary{FirstName: "Sarah", LastName: "M", Rating: decimal.RequireFromString("4.8")},
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	code, _ := body["error"].(string)
	return code
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"healthy", nil, http.StatusOK},
		{"unhealthy", errors.New("service unavailable"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(stubReporter{last: &worker.Status{Healthy: true, CheckedAt: time.Now()}})
			f.tasks.On("HealthCheck", mock.Anything).Return(tt.err)

			w := f.do(http.MethodGet, "/health", "", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), "taskmap")
			assert.Contains(t, w.Body.String(), "last_probe")
			f.assertExpectations(t)
		})
	}
}

func TestBrowseTasks(t *testing.T) {
	f := newFixture(nil)
	tk := sampleTask()
	f.tasks.On("BrowseTasks", mock.Anything, listing.Filter{Search: "clean", Category: "cleaning"}).
		Return(listing.View{
			Tasks:      []*task.Task{tk},
			Categories: []listing.Facet{{ID: "all", Name: "All Tasks", Count: 1}},
			Total:      3,
			Source:     listing.SourceSample,
			Error:      "connection refused",
		})

	w := f.do(http.MethodGet, "/tasks?search=clean&category=cleaning", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ListingResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, listing.SourceSample, resp.Source)
	assert.Equal(t, "connection refused", resp.Error)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Tasks, 1)
	assert.True(t, resp.Tasks[0].Sample)
	assert.Equal(t, "Sarah", resp.Tasks[0].Poster.FirstName)
	assert.Equal(t, "80", resp.Tasks[0].Price.String())
	f.assertExpectations(t)
}

func TestPostTask(t *testing.T) {
	created := sampleTask()

	tests := []struct {
		name           string
		requestBody    string
		contentType    string
		setupMock      func(*MockTaskService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:        "success - price as string",
			requestBody: `{"title":"House Cleaning","description":"2BR","category":"cleaning","price":"80.00"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.MatchedBy(func(in service.CreateTaskInput) bool {
					return in.Title == "House Cleaning" && in.Price.Equal(decimal.NewFromInt(80))
				})).Return(&service.CreateTaskResult{Task: created, OpenTasks: []*task.Task{created}, Refreshed: true}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "success - price as number, refetch failed",
			requestBody: `{"title":"House Cleaning","description":"2BR","category":"cleaning","price":80}`,
			contentType: "application/json; charset=utf-8",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.Anything).
					Return(&service.CreateTaskResult{Task: created}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - invalid content type",
			requestBody:    `{}`,
			contentType:    "text/plain",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "error - invalid JSON",
			requestBody:    `{invalid json}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   service.CodeValidation,
		},
		{
			name:        "error - unauthenticated",
			requestBody: `{"title":"x","description":"y","category":"cleaning","price":"1"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.Anything).
					Return(nil, service.NewUnauthenticated("create_task"))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   service.CodeUnauthenticated,
		},
		{
			name:        "error - validation",
			requestBody: `{"title":"","price":"1"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.Anything).
					Return(nil, service.NewValidationError("title", "обязательное поле"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   service.CodeValidation,
		},
		{
			name:        "error - service error",
			requestBody: `{"title":"x","price":"1"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			tt.setupMock(f.tasks)

			w := f.do(http.MethodPost, "/tasks", tt.contentType, tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				var resp dto.CreateTaskResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, created.ID, resp.Task.ID)
				assert.Equal(t, len(resp.OpenTasks) > 0, resp.Refreshed)
			} else if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w))
			}
			f.assertExpectations(t)
		})
	}
}

func TestGetTaskByID(t *testing.T) {
	tk := sampleTask()

	tests := []struct {
		name           string
		taskID         string
		setupMock      func(*MockTaskService)
		expectedStatus int
		sample         bool
	}{
		{
			name:   "success",
			taskID: tk.ID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTask", mock.Anything, tk.ID).Return(tk, false, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "sample task is flagged",
			taskID: tk.ID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTask", mock.Anything, tk.ID).Return(tk, true, nil)
			},
			expectedStatus: http.StatusOK,
			sample:         true,
		},
		{
			name:           "invalid UUID",
			taskID:         "invalid-uuid",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "nil UUID",
			taskID:         uuid.Nil.String(),
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "not found",
			taskID: tk.ID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTask", mock.Anything, tk.ID).Return(nil, false, service.NewNotFound("задача", tk.ID.String()))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "service error",
			taskID: tk.ID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTask", mock.Anything, tk.ID).Return(nil, false, errors.New("internal error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			tt.setupMock(f.tasks)

			w := f.do(http.MethodGet, "/tasks/"+tt.taskID, "", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp dto.TaskResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tk.ID, resp.ID)
				assert.Equal(t, tt.sample, resp.Sample)
			}
			f.assertExpectations(t)
		})
	}
}

func TestTaskMap(t *testing.T) {
	f := newFixture(nil)
	tk := sampleTask()
	f.tasks.On("BrowseTasks", mock.Anything, listing.Filter{Category: "cleaning"}).
		Return(listing.View{Tasks: []*task.Task{tk}, Total: 1, Source: listing.SourceLive})

	req := httptest.NewRequest(http.MethodGet, "/tasks/map?category=cleaning", nil)
	req = req.WithContext(geo.WithPosition(req.Context(), geo.Point{Lat: 40.75, Lng: -73.98}))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.MapResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.Map)
	require.Len(t, resp.Map.Markers.Features, 1)
	assert.Equal(t, tk.ID.String(), resp.Map.Markers.Features[0].ID)
	require.NotNil(t, resp.Map.UserPosition)
	assert.Equal(t, 40.75, resp.Map.UserPosition.Lat)
	assert.Equal(t, listing.SourceLive, resp.Source)
	f.assertExpectations(t)
}

func TestApplyForTask(t *testing.T) {
	taskID := uuid.New()
	app := application.New(taskID, uuid.New(), "I can help")
	app.ID = uuid.New()

	tests := []struct {
		name           string
		body           string
		contentType    string
		setupMock      func(*MockApplicationService)
		expectedStatus int
	}{
		{
			name:        "success",
			body:        `{"message":"I can help"}`,
			contentType: "application/json",
			setupMock: func(m *MockApplicationService) {
				m.On("ApplyForTask", mock.Anything, taskID, "I can help").Return(app, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "empty body",
			setupMock: func(m *MockApplicationService) {
				m.On("ApplyForTask", mock.Anything, taskID, "").Return(app, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "unauthenticated",
			body:        `{"message":"hi"}`,
			contentType: "application/json",
			setupMock: func(m *MockApplicationService) {
				m.On("ApplyForTask", mock.Anything, taskID, "hi").Return(nil, service.NewUnauthenticated("apply_for_task"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:        "task not found",
			body:        `{}`,
			contentType: "application/json",
			setupMock: func(m *MockApplicationService) {
				m.On("ApplyForTask", mock.Anything, taskID, "").Return(nil, service.NewNotFound("задача", taskID.String()))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "task closed",
			body:        `{}`,
			contentType: "application/json",
			setupMock: func(m *MockApplicationService) {
				m.On("ApplyForTask", mock.Anything, taskID, "").
					Return(nil, service.NewBusinessError(service.CodeInvalidStatus, "closed"))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "wrong content type",
			body:           `message=hi`,
			contentType:    "application/x-www-form-urlencoded",
			setupMock:      func(m *MockApplicationService) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			tt.setupMock(f.apps)

			w := f.do(http.MethodPost, "/tasks/"+taskID.String()+"/applications", tt.contentType, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				var resp dto.ApplicationResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "pending", resp.Status)
			}
			f.assertExpectations(t)
		})
	}
}

func TestListApplications(t *testing.T) {
	f := newFixture(nil)
	taskID := uuid.New()
	app := application.New(taskID, uuid.New(), "hello")
	app.Worker = &application.WorkerSummary{FirstName: "John", LastName: "D"}
	f.apps.On("ListApplications", mock.Anything, taskID).Return([]*application.Application{app}, nil)

	w := f.do(http.MethodGet, "/tasks/"+taskID.String()+"/applications", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Applications []dto.ApplicationResponse `json:"applications"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Applications, 1)
	assert.Equal(t, "John", resp.Applications[0].Worker.FirstName)
	f.assertExpectations(t)
}

func TestProfiles(t *testing.T) {
	id := uuid.New()
	p := &profile.Profile{ID: id, FirstName: "Sarah", LastName: "Miller", Role: profile.RoleBoth}

	t.Run("get", func(t *testing.T) {
		f := newFixture(nil)
		f.profiles.On("GetProfile", mock.Anything, id).Return(p, nil)

		w := f.do(http.MethodGet, "/profiles/"+id.String(), "", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_role":"both"`)
	})

	t.Run("get missing", func(t *testing.T) {
		f := newFixture(nil)
		f.profiles.On("GetProfile", mock.Anything, id).Return(nil, service.NewNotFound("профиль", id.String()))

		w := f.do(http.MethodGet, "/profiles/"+id.String(), "", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("upsert me", func(t *testing.T) {
		f := newFixture(nil)
		f.profiles.On("UpsertProfile", mock.Anything, mock.MatchedBy(func(in service.ProfileInput) bool {
			return in.FirstName == "Sarah" && in.Role == "gig_worker"
		})).Return(p, nil)

		w := f.do(http.MethodPut, "/profiles/me", "application/json", `{"first_name":"Sarah","user_role":"gig_worker"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		f.assertExpectations(t)
	})
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(nil)

	w := f.do(http.MethodGet, "/nowhere", "", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w))
}
