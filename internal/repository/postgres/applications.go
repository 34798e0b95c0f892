package postgres

import (
	"context"
	"fmt"
	"taskMap/internal/logger"
	"taskMap/internal/models/application"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Storage) CreateApplication(ctx context.Context, app *application.Application) error {
	start := time.Now()
	defer logSlow("create_application", start)

	query := `INSERT INTO task_applications (task_id, worker_id, status, message)
				VALUES ($1, $2, $3, $4)
				RETURNING id, applied_at`

	err := s.pool.QueryRow(ctx, query,
		app.TaskID,
		app.WorkerID,
		app.Status,
		app.Message,
	).Scan(&app.ID, &app.AppliedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить отклик", err,
			zap.String("task_id", app.TaskID.String()),
			zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление отклика: %w", mapPgError(err))
	}
	return nil
}

func (s *Storage) ListApplicationsByTask(ctx context.Context, taskID uuid.UUID) ([]*application.Application, error) {
	start := time.Now()
	defer logSlow("list_applications", start)

	query := `SELECT
				a.id, a.task_id, a.worker_id, a.status, a.message, a.applied_at, a.responded_at,
				p.id IS NOT NULL,
				COALESCE(p.first_name, ''),
				COALESCE(p.last_name, ''),
				COALESCE(p.rating, 0),
				p.latitude,
				p.longitude
				FROM task_applications a
				LEFT JOIN profiles p ON p.id = a.worker_id
				WHERE a.task_id = $1
				ORDER BY a.applied_at DESC`

	rows, err := s.pool.Query(ctx, query, taskID)
	if err != nil {
		logger.Error("Repository: Не удалось получить отклики", err, zap.String("task_id", taskID.String()))
		return nil, fmt.Errorf("получение откликов: %w", err)
	}
	defer rows.Close()

	res := []*application.Application{}
	for rows.Next() {
		var (
			a         application.Application
			hasWorker bool
			worker    application.WorkerSummary
		)
		err := rows.Scan(
			&a.ID, &a.TaskID, &a.WorkerID, &a.Status, &a.Message, &a.AppliedAt, &a.RespondedAt,
			&hasWorker, &worker.FirstName, &worker.LastName, &worker.Rating,
			&worker.Latitude, &worker.Longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("чтение строки отклика: %w", err)
		}
		if hasWorker {
			a.Worker = &worker
		}
		res = append(res, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("чтение откликов: %w", err)
	}
	return res, nil
}
