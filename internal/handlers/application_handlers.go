package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"taskMap/internal/handlers/dto"
	"taskMap/internal/logger"
	"taskMap/internal/service"
	"time"

	"go.uber.org/zap"
)

type ApplicationHandler struct {
	ApplicationService ApplicationService
}

func NewApplicationHandler(applicationService ApplicationService) ApplicationHandler {
	return ApplicationHandler{ApplicationService: applicationService}
}

// ApplyForTask: тело необязательно, пустое тело - отклик без сообщения
func (s *ApplicationHandler) ApplyForTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	taskID, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var request dto.ApplyRequest
	if r.ContentLength != 0 {
		if !requireJSON(w, r) {
			return
		}
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&request)
		if err != nil && !errors.Is(err, io.EOF) {
			logger.Warn("HTTP: ошибка чтения JSON",
				zap.Error(err),
				zap.String("client_ip", r.RemoteAddr))

			responseWithError(w, http.StatusBadRequest, service.CodeValidation, "неверное тело запроса: "+err.Error())
			return
		}
	}

	app, err := s.ApplicationService.ApplyForTask(r.Context(), taskID, request.Message)
	if err != nil {
		handleServiceError(w, r, err, "apply_for_task", start)
		return
	}

	logger.Info("HTTP_OUT: Отклик создан",
		zap.String("application_id", app.ID.String()),
		zap.String("task_id", taskID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	writeJSON(w, http.StatusCreated, dto.FromApplication(app))
}

func (s *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	taskID, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	apps, err := s.ApplicationService.ListApplications(r.Context(), taskID)
	if err != nil {
		handleServiceError(w, r, err, "list_applications", start)
		return
	}

	logger.Info("HTTP_OUT: Отклики получены",
		zap.String("task_id", taskID.String()),
		zap.Int("count", len(apps)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("applications", dto.FromApplicationList(apps)))
}
