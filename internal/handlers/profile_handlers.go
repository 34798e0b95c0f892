package handlers

import (
	"encoding/json"
	"net/http"
	"taskMap/internal/handlers/dto"
	"taskMap/internal/logger"
	"taskMap/internal/service"
	"time"

	"go.uber.org/zap"
)

type ProfileHandler struct {
	ProfileService ProfileService
}

func NewProfileHandler(profileService ProfileService) ProfileHandler {
	return ProfileHandler{ProfileService: profileService}
}

func (s *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	p, err := s.ProfileService.GetProfile(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_profile", start)
		return
	}

	logger.Debug("HTTP_OUT: Профиль получен",
		zap.String("profile_id", id.String()),
		zap.Duration("ms", time.Since(start)))

	writeJSON(w, http.StatusOK, p)
}

func (s *ProfileHandler) UpsertMyProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !requireJSON(w, r) {
		return
	}

	var request dto.ProfileRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, service.CodeValidation, "неверное тело запроса: "+err.Error())
		return
	}

	p, err := s.ProfileService.UpsertProfile(r.Context(), service.ProfileInput{
		FirstName:       request.FirstName,
		LastName:        request.LastName,
		Email:           request.Email,
		Phone:           request.Phone,
		Address:         request.Address,
		Latitude:        request.Latitude,
		Longitude:       request.Longitude,
		ProfileImageURL: request.ProfileImageURL,
		Role:            request.Role,
	})
	if err != nil {
		handleServiceError(w, r, err, "upsert_profile", start)
		return
	}

	logger.Info("HTTP_OUT: Профиль сохранён",
		zap.String("profile_id", p.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, p)
}
