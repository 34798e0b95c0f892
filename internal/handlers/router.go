package handlers

import (
	"net/http"
	"taskMap/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handlers struct {
	Tasks        TaskHandler
	Applications ApplicationHandler
	Profiles     ProfileHandler
	Health       HealthHandler
}

func NewRouter(h Handlers, middlewares ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middlewares...)

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/health", h.Health.HealthCheck)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.Tasks.BrowseTasks) // GET /tasks?search=&category=
		r.Post("/", h.Tasks.PostTask)   // POST /tasks
		r.Get("/map", h.Tasks.TaskMap)  // GET /tasks/map

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Tasks.GetTaskByID)                         // GET /tasks/{id}
			r.Get("/applications", h.Applications.ListApplications) // GET /tasks/{id}/applications
			r.Post("/applications", h.Applications.ApplyForTask)    // POST /tasks/{id}/applications
		})
	})

	r.Route("/profiles", func(r chi.Router) {
		r.Put("/me", h.Profiles.UpsertMyProfile) // PUT /profiles/me
		r.Get("/{id}", h.Profiles.GetProfile)    // GET /profiles/{id}
	})

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	logger.Warn("HTTP: Маршрут не найден",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusNotFound, "NOT_FOUND", "маршрут не найден")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	responseWithError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "метод "+r.Method+" не поддерживается")
}
