package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"taskMap/internal/geo"
	"taskMap/internal/handlers/dto"
	"taskMap/internal/listing"
	"taskMap/internal/logger"
	"taskMap/internal/models/task"
	"taskMap/internal/service"
	"time"

	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
	Renderer    geo.MapRenderer
	Locator     geo.Locator
}

func NewTaskHandler(taskService TaskService, renderer geo.MapRenderer, locator geo.Locator) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
		Renderer:    renderer,
		Locator:     locator,
	}
}

func filterFromRequest(r *http.Request) listing.Filter {
	q := r.URL.Query()
	return listing.Filter{
		Search:   q.Get("search"),
		Category: task.Category(q.Get("category")),
	}
}

// BrowseTasks отдаёт список открытых задач с фильтром и счётчиками категорий.
// Ошибка загрузки не превращается в 5xx: она видна в поле error.
func (s *TaskHandler) BrowseTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	f := filterFromRequest(r)

	view := s.TaskService.BrowseTasks(r.Context(), f)

	logger.Info("HTTP_OUT: Список задач получен",
		zap.String("search", f.Search),
		zap.String("category", string(f.Category)),
		zap.Int("count", len(view.Tasks)),
		zap.String("source", string(view.Source)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromView(view))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !requireJSON(w, r) {
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, service.CodeValidation, "неверное тело запроса: "+err.Error())
		return
	}

	logger.Debug("HTTP: Вызов сервиса создания задачи")
	result, err := s.TaskService.CreateTask(r.Context(), service.CreateTaskInput{
		Title:         request.Title,
		Description:   request.Description,
		Category:      request.Category,
		Price:         request.Price,
		Location:      request.Location,
		Latitude:      request.Latitude,
		Longitude:     request.Longitude,
		EstimatedTime: request.EstimatedTime,
		Urgency:       request.Urgency,
		Images:        request.Images,
	})
	if err != nil {
		handleServiceError(w, r, err, "create_task", start)
		return
	}

	openTasks := dto.FromTaskList(result.OpenTasks)
	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", result.Task.ID.String()),
		zap.Bool("refreshed", result.Refreshed),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	writeJSON(w, http.StatusCreated, dto.CreateTaskResponse{
		Task:      dto.FromTask(result.Task),
		OpenTasks: openTasks,
		Refreshed: result.Refreshed,
	})
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	found, sample, err := s.TaskService.GetTask(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task", start)
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.String("task_id", found.ID.String()),
		zap.Bool("sample", sample),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	resp := dto.FromTask(found)
	resp.Sample = sample
	writeJSON(w, http.StatusOK, resp)
}

// TaskMap рисует отфильтрованные задачи маркерами; позиция клиента необязательна
func (s *TaskHandler) TaskMap(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	view := s.TaskService.BrowseTasks(r.Context(), filterFromRequest(r))

	rendered, err := s.Renderer.RenderMarkers(r.Context(), dto.ToPoints(view.Tasks))
	if err != nil {
		handleServiceError(w, r, err, "render_map", start)
		return
	}

	if s.Locator != nil {
		pos, err := s.Locator.CurrentPosition(r.Context())
		switch {
		case err == nil:
			rendered.UserPosition = &pos
		case !errors.Is(err, geo.ErrPositionUnavailable):
			logger.Warn("HTTP: Позиция клиента недоступна", zap.Error(err))
		}
	}

	logger.Info("HTTP_OUT: Карта задач построена",
		zap.Int("markers", len(rendered.Markers.Features)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.MapResponse{
		Map:    rendered,
		Total:  view.Total,
		Source: view.Source,
		Error:  view.Error,
	})
}
