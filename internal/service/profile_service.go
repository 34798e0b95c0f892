package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskMap/internal/auth"
	"taskMap/internal/models/profile"
	rep "taskMap/internal/repository"

	"github.com/google/uuid"
)

type ProfileInput struct {
	FirstName       string   `json:"first_name" validate:"required,max=100"`
	LastName        string   `json:"last_name" validate:"max=100"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Phone           string   `json:"phone" validate:"max=32"`
	Address         string   `json:"address" validate:"max=300"`
	Latitude        *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude" validate:"omitempty,longitude"`
	ProfileImageURL string   `json:"profile_image_url" validate:"omitempty,url"`
	Role            string   `json:"user_role" validate:"omitempty,oneof=task_provider gig_worker both"`
}

type ProfileService struct {
	repo Repository
}

func NewProfileService(repo Repository) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) GetProfile(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	p, err := s.repo.GetProfileByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("профиль", id.String())
		}
		return nil, fmt.Errorf("получение профиля: %w", err)
	}
	return p, nil
}

// UpsertProfile создаёт или обновляет профиль вызывающего
func (s *ProfileService) UpsertProfile(ctx context.Context, in ProfileInput) (*profile.Profile, error) {
	userID, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, NewUnauthenticated("upsert_profile")
	}

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, NewValidationError("latitude", "координаты задаются парой")
	}

	role := profile.Role(in.Role)
	if role == "" {
		role = profile.RoleBoth
	}

	p := &profile.Profile{
		ID:              userID,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           in.Email,
		Phone:           in.Phone,
		Address:         in.Address,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		ProfileImageURL: in.ProfileImageURL,
		Role:            role,
	}
	if err := s.repo.UpsertProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("сохранение профиля: %w", err)
	}
	return p, nil
}
