package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"taskMap/internal/auth"
	"taskMap/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// Authenticate кладёт id пользователя в контекст. Запрос без заголовка
// Authorization проходит анонимно, а решение о доступе принимает сервис.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !strings.HasPrefix(header, bearerPrefix) {
				unauthorized(w, r, "неверный формат заголовка Authorization")
				return
			}

			userID, err := verifier.Verify(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
			if err != nil {
				logger.Warn("HTTP: Токен отклонён",
					zap.Error(err),
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("client_ip", r.RemoteAddr))
				unauthorized(w, r, "недействительный токен")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="taskmap"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":      "UNAUTHENTICATED",
		"message":    message,
		"request_id": GetRequestID(r.Context()),
	})
}
