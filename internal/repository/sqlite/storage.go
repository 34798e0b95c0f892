package sqlite

import (
	"context"
	"errors"
	"fmt"
	"taskMap/internal/logger"
	"taskMap/internal/models/application"
	"taskMap/internal/models/profile"
	"taskMap/internal/models/task"
	repo "taskMap/internal/repository"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Storage struct {
	db *gorm.DB
}

// New открывает файл базы (или ":memory:") и создаёт таблицы
func New(dsn string) (*Storage, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		logger.Error("Repository: Не удалось открыть SQLite", err, zap.String("dsn", dsn))
		return nil, fmt.Errorf("открытие sqlite: %w", err)
	}

	// с :memory: каждое новое соединение получает пустую базу
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("получение соединения sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&profileRow{}, &taskRow{}, &applicationRow{}); err != nil {
		logger.Error("Repository: Ошибка миграции SQLite", err)
		return nil, fmt.Errorf("миграция sqlite: %w", err)
	}

	logger.Info("Repository: SQLite готов", zap.String("dsn", dsn))
	return &Storage{db: db}, nil
}

func (s *Storage) Close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Repository: Закрытие SQLite")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	var ids []string
	err := s.db.WithContext(ctx).Model(&profileRow{}).Limit(1).Pluck("id", &ids).Error
	if err != nil {
		logger.Error("Repository: Неудачная проверка базы", err)
		return fmt.Errorf("проверка базы: %w", err)
	}
	return nil
}

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	if taskToCreate.ID == uuid.Nil {
		taskToCreate.ID = uuid.New()
	}
	if taskToCreate.Images == nil {
		taskToCreate.Images = []string{}
	}

	row := toTaskRow(taskToCreate)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err)
		return fmt.Errorf("добавление задачи: %w", mapGormError(err))
	}
	taskToCreate.CreatedAt = row.CreatedAt
	return nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	var row taskRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	posters, err := s.profilesByID(ctx, []uuid.UUID{row.PosterID})
	if err != nil {
		return nil, err
	}
	return row.toModel(posters[row.PosterID]), nil
}

func (s *Storage) ListOpenTasks(ctx context.Context) ([]*task.Task, error) {
	var rows []taskRow
	err := s.db.WithContext(ctx).
		Where("status = ?", task.StatusOpen).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		logger.Error("Repository: Не удалось получить открытые задачи", err)
		return nil, fmt.Errorf("получение открытых задач: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.PosterID)
	}
	posters, err := s.profilesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	res := make([]*task.Task, 0, len(rows))
	for i := range rows {
		res = append(res, rows[i].toModel(posters[rows[i].PosterID]))
	}
	return res, nil
}

func (s *Storage) CreateApplication(ctx context.Context, app *application.Application) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&taskRow{}).Where("id = ?", app.TaskID).Count(&count).Error; err != nil {
			return fmt.Errorf("проверка задачи: %w", err)
		}
		if count == 0 {
			return repo.ErrNotFound
		}

		if app.ID == uuid.Nil {
			app.ID = uuid.New()
		}
		row := toApplicationRow(app)
		if err := tx.Create(row).Error; err != nil {
			logger.Error("Repository: Не удалось добавить отклик", err)
			return fmt.Errorf("добавление отклика: %w", mapGormError(err))
		}
		app.AppliedAt = row.AppliedAt
		return nil
	})
}

func (s *Storage) ListApplicationsByTask(ctx context.Context, taskID uuid.UUID) ([]*application.Application, error) {
	var rows []applicationRow
	err := s.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("applied_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("получение откликов: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.WorkerID)
	}
	workers, err := s.profilesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	res := make([]*application.Application, 0, len(rows))
	for i := range rows {
		res = append(res, rows[i].toModel(workers[rows[i].WorkerID]))
	}
	return res, nil
}

func (s *Storage) GetProfileByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	var row profileRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("получение профиля: %w", err)
	}
	return row.toModel(), nil
}

func (s *Storage) UpsertProfile(ctx context.Context, p *profile.Profile) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing profileRow
		err := tx.Where("id = ?", p.ID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := toProfileRow(p)
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("создание профиля: %w", mapGormError(err))
			}
			p.CreatedAt = row.CreatedAt
			return nil
		case err != nil:
			return fmt.Errorf("получение профиля: %w", err)
		}

		now := time.Now()
		row := toProfileRow(p)
		row.Rating = existing.Rating
		row.TotalRatings = existing.TotalRatings
		row.CreatedAt = existing.CreatedAt
		row.Modified = &now
		if err := tx.Save(row).Error; err != nil {
			return fmt.Errorf("обновление профиля: %w", err)
		}
		p.Rating = existing.Rating
		p.TotalRatings = existing.TotalRatings
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = &now
		return nil
	})
}

func (s *Storage) profilesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*profileRow, error) {
	res := make(map[uuid.UUID]*profileRow, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	var rows []profileRow
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("получение профилей: %w", err)
	}
	for i := range rows {
		res[rows[i].ID] = &rows[i]
	}
	return res, nil
}

func mapGormError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repo.ErrConflict
	}
	return err
}
