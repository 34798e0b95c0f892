package postgres

import (
	"context"
	"errors"
	"fmt"
	"taskMap/internal/logger"
	"taskMap/internal/models/task"
	repo "taskMap/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `
	t.id, t.title, t.description, t.category, t.location,
	t.latitude, t.longitude, t.price, t.estimated_time, t.urgency,
	t.status, t.poster_id, t.assigned_worker_id, t.images,
	t.created_at, t.updated_at,
	p.id IS NOT NULL,
	COALESCE(p.first_name, ''),
	COALESCE(p.last_name, ''),
	COALESCE(p.rating, 0)`

func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		t         task.Task
		hasPoster bool
		poster    task.PosterSummary
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Category, &t.Location,
		&t.Latitude, &t.Longitude, &t.Price, &t.EstimatedTime, &t.Urgency,
		&t.Status, &t.PosterID, &t.AssignedWorkerID, &t.Images,
		&t.CreatedAt, &t.UpdatedAt,
		&hasPoster, &poster.FirstName, &poster.LastName, &poster.Rating,
	)
	if err != nil {
		return nil, err
	}
	if hasPoster {
		t.Poster = &poster
	}
	if t.Images == nil {
		t.Images = []string{}
	}
	return &t, nil
}

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer logSlow("create_task", start)

	if taskToCreate.Images == nil {
		taskToCreate.Images = []string{}
	}

	query := `INSERT INTO tasks
				(title, description, category, location, latitude, longitude,
				 price, estimated_time, urgency, status, poster_id, images)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
				RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Category,
		taskToCreate.Location,
		taskToCreate.Latitude,
		taskToCreate.Longitude,
		taskToCreate.Price,
		taskToCreate.EstimatedTime,
		taskToCreate.Urgency,
		taskToCreate.Status,
		taskToCreate.PosterID,
		taskToCreate.Images,
	).Scan(&taskToCreate.ID, &taskToCreate.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", mapPgError(err))
	}
	return nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()
	defer logSlow("get_task", start)

	query := `SELECT ` + taskColumns + `
				FROM tasks t
				LEFT JOIN profiles p ON p.id = t.poster_id
				WHERE t.id = $1`

	found, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.String("task_id", id.String()))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return found, nil
}

func (s *Storage) ListOpenTasks(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()
	defer logSlow("list_open_tasks", start)

	query := `SELECT ` + taskColumns + `
				FROM tasks t
				LEFT JOIN profiles p ON p.id = t.poster_id
				WHERE t.status = $1
				ORDER BY t.created_at DESC`

	rows, err := s.pool.Query(ctx, query, task.StatusOpen)
	if err != nil {
		logger.Error("Repository: Не удалось получить открытые задачи", err)
		return nil, fmt.Errorf("получение открытых задач: %w", err)
	}
	defer rows.Close()

	res := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение строки задачи: %w", err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("чтение открытых задач: %w", err)
	}
	return res, nil
}
