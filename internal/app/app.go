package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"taskMap/internal/auth"
	"taskMap/internal/config"
	"taskMap/internal/fixtures"
	"taskMap/internal/geo"
	"taskMap/internal/handlers"
	"taskMap/internal/listing"
	"taskMap/internal/logger"
	"taskMap/internal/middleware"
	"taskMap/internal/models/task"
	"taskMap/internal/repository/inmemory"
	"taskMap/internal/repository/postgres"
	"taskMap/internal/repository/sqlite"
	"taskMap/internal/service"
	"taskMap/internal/worker"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.Repository
	worker     *worker.HealthWorker
	shutdowns  []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development, a.config.Logging.Level); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	repo, err := NewRepository(ctx, a.config)
	if err != nil {
		return nil, err
	}
	a.repository = repo
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Закрытие хранилища...")
		repo.Close()
	})

	samples, err := a.samples()
	if err != nil {
		return nil, err
	}

	center := geo.Point{Lat: a.config.Map.DefaultLat, Lng: a.config.Map.DefaultLng}
	taskService := service.NewTaskService(repo, samples, a.listingOptions(), center)
	applicationService := service.NewApplicationService(repo)
	profileService := service.NewProfileService(repo)

	interval := a.config.Health.ProbeInterval
	a.worker = worker.NewHealthWorker(taskService, &interval)

	limitStore, err := a.limitStore(ctx)
	if err != nil {
		return nil, err
	}
	tokens := auth.NewTokens(a.config.Auth.JWTSecret, a.config.Auth.Issuer, a.config.Auth.TokenTTL)

	a.router = handlers.NewRouter(handlers.Handlers{
		Tasks:        handlers.NewTaskHandler(taskService, geo.NewGeoJSONRenderer(center, a.config.Map.DefaultZoom), geo.ContextLocator{}),
		Applications: handlers.NewApplicationHandler(applicationService),
		Profiles:     handlers.NewProfileHandler(profileService),
		Health:       handlers.NewHealthHandler(taskService, a.worker),
	},
		middleware.RequestID,
		middleware.Logging,
		chimw.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   a.config.Server.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", middleware.PositionHeader},
			ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		middleware.RateLimit(a.config.RateLimit.RequestsPerMinute, limitStore),
		chimw.Timeout(a.config.Server.WriteTimeout),
		middleware.Authenticate(tokens),
		middleware.Position,
	)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, "taskmap"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	return a, nil
}

// NewRepository открывает хранилище по repository.type; для postgres сначала применяются миграции
func NewRepository(ctx context.Context, cfg *config.Config) (service.Repository, error) {
	switch cfg.Repository.Type {
	case config.RepositoryPostgres:
		if err := postgres.Migrate(cfg.Database.URL); err != nil {
			return nil, fmt.Errorf("миграции: %w", err)
		}
		storage, err := postgres.New(ctx, cfg.Database.URL, postgres.PoolConfig{
			MaxConns:    cfg.Database.MaxConnections,
			MinConns:    cfg.Database.MinConnections,
			IdleTimeout: cfg.Database.IdleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("подключение к postgres: %w", err)
		}
		logger.Info("Хранилище: postgres")
		return storage, nil

	case config.RepositorySQLite:
		storage, err := sqlite.New(cfg.Repository.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("открытие sqlite: %w", err)
		}
		logger.Info("Хранилище: sqlite", zap.String("path", cfg.Repository.SQLitePath))
		return storage, nil

	case config.RepositoryInMemory:
		logger.Info("Хранилище: inmemory")
		return inmemory.New(), nil
	}
	return nil, fmt.Errorf("неизвестный тип репозитория %q", cfg.Repository.Type)
}

// samples нужны только в режиме sample или с включённой подстановкой
func (a *App) samples() (service.SampleLookup, error) {
	if !a.config.Listing.Fallback && a.config.Listing.Mode != config.ListingModeSample {
		return nil, nil
	}
	provider, err := fixtures.Default()
	if err != nil {
		return nil, fmt.Errorf("загрузка примеров: %w", err)
	}
	return provider, nil
}

func (a *App) listingOptions() listing.Options {
	opts := listing.Options{
		Mode:     listing.Mode(a.config.Listing.Mode),
		Fallback: a.config.Listing.Fallback,
	}
	for _, c := range a.config.Listing.Categories {
		opts.Registry = append(opts.Registry, listing.CategoryInfo{ID: task.Category(c.ID), Name: c.Name})
	}
	return opts
}

func (a *App) limitStore(ctx context.Context) (middleware.LimitStore, error) {
	if a.config.RateLimit.Store != "redis" {
		return middleware.NewMemoryStore(), nil
	}
	store, err := middleware.NewRedisStore(ctx, a.config.RateLimit.RedisAddr, a.config.RateLimit.RedisPassword, a.config.RateLimit.RedisDB)
	if err != nil {
		return nil, err
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Закрытие Redis...")
		if err := store.Close(); err != nil {
			logger.Error("Ошибка закрытия Redis", err)
		}
	})
	return store, nil
}

// Run блокируется до отмены ctx или падения сервера
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go a.worker.Start(workerCtx)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Получен сигнал остановки")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("сервер: %w", err)
		}
	}

	stopWorker()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", err)
		if runErr == nil {
			runErr = err
		}
	}

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	return runErr
}

func (a *App) Handler() http.Handler {
	return a.router
}
