package handlers

import (
	"net/http"
	"taskMap/internal/logger"

	"go.uber.org/zap"
)

const serviceName = "taskmap"

type HealthHandler struct {
	TaskService TaskService
	Reporter    HealthReporter
}

func NewHealthHandler(taskService TaskService, reporter HealthReporter) HealthHandler {
	return HealthHandler{TaskService: taskService, Reporter: reporter}
}

func (s *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	payload := []Payload{toPayload("service", serviceName)}
	if s.Reporter != nil {
		if last := s.Reporter.Last(); last != nil {
			payload = append(payload, toPayload("last_probe", last))
		}
	}

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Warn("HTTP: Хранилище недоступно", zap.Error(err))
		payload = append(payload,
			toPayload("status", "unavailable"),
			toPayload("error", err.Error()),
		)
		responseWithJSON(w, http.StatusServiceUnavailable, payload...)
		return
	}

	payload = append(payload, toPayload("status", "ok"))
	responseWithJSON(w, http.StatusOK, payload...)
}
