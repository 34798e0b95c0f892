package postgres

import (
	"context"
	"errors"
	"fmt"
	"taskMap/internal/logger"
	"taskMap/internal/models/profile"
	repo "taskMap/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *Storage) GetProfileByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	start := time.Now()
	defer logSlow("get_profile", start)

	query := `SELECT id, first_name, last_name, email, phone, address,
				latitude, longitude, profile_image_url, rating, total_ratings,
				user_role, created_at, updated_at
				FROM profiles
				WHERE id = $1`

	var p profile.Profile
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Address,
		&p.Latitude, &p.Longitude, &p.ProfileImageURL, &p.Rating, &p.TotalRatings,
		&p.Role, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить профиль", err)
		return nil, fmt.Errorf("получение профиля: %w", err)
	}
	return &p, nil
}

// рейтинг задаётся только при создании записи, при обновлении профиля его не трогаем
func (s *Storage) UpsertProfile(ctx context.Context, p *profile.Profile) error {
	start := time.Now()
	defer logSlow("upsert_profile", start)

	query := `INSERT INTO profiles
				(id, first_name, last_name, email, phone, address,
				 latitude, longitude, profile_image_url, user_role, rating, total_ratings)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
				ON CONFLICT (id) DO UPDATE SET
					first_name = EXCLUDED.first_name,
					last_name = EXCLUDED.last_name,
					email = EXCLUDED.email,
					phone = EXCLUDED.phone,
					address = EXCLUDED.address,
					latitude = EXCLUDED.latitude,
					longitude = EXCLUDED.longitude,
					profile_image_url = EXCLUDED.profile_image_url,
					user_role = EXCLUDED.user_role,
					updated_at = NOW()
				RETURNING rating, total_ratings, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.Address,
		p.Latitude, p.Longitude, p.ProfileImageURL, p.Role, p.Rating, p.TotalRatings,
	).Scan(&p.Rating, &p.TotalRatings, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось сохранить профиль", err)
		return fmt.Errorf("сохранение профиля: %w", mapPgError(err))
	}
	return nil
}
