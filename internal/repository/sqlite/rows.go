package sqlite

import (
	"taskMap/internal/models/application"
	"taskMap/internal/models/profile"
	"taskMap/internal/models/task"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type profileRow struct {
	ID              uuid.UUID       `gorm:"type:text;primaryKey"`
	FirstName       string          `gorm:"not null"`
	LastName        string          `gorm:"not null"`
	Email           string          `gorm:"not null"`
	Phone           string          `gorm:"not null"`
	Address         string          `gorm:"not null"`
	Latitude        *float64
	Longitude       *float64
	ProfileImageURL string          `gorm:"column:profile_image_url;not null"`
	Rating          decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0"`
	TotalRatings    int             `gorm:"not null;default:0"`
	UserRole        string          `gorm:"not null"`
	CreatedAt       time.Time
	Modified        *time.Time `gorm:"column:updated_at"`
}

func (profileRow) TableName() string { return "profiles" }

type taskRow struct {
	ID               uuid.UUID       `gorm:"type:text;primaryKey"`
	Title            string          `gorm:"not null"`
	Description      string          `gorm:"not null"`
	Category         string          `gorm:"not null;index"`
	Location         string          `gorm:"not null"`
	Latitude         float64         `gorm:"not null;default:0"`
	Longitude        float64         `gorm:"not null;default:0"`
	Price            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	EstimatedTime    string          `gorm:"not null"`
	Urgency          string          `gorm:"not null"`
	Status           string          `gorm:"not null;index:idx_tasks_status_created,priority:1"`
	PosterID         uuid.UUID       `gorm:"type:text;not null;index"`
	AssignedWorkerID *uuid.UUID      `gorm:"type:text"`
	Images           []string        `gorm:"serializer:json"`
	CreatedAt        time.Time       `gorm:"index:idx_tasks_status_created,priority:2"`
	Modified         *time.Time      `gorm:"column:updated_at"`
}

func (taskRow) TableName() string { return "tasks" }

type applicationRow struct {
	ID          uuid.UUID `gorm:"type:text;primaryKey"`
	TaskID      uuid.UUID `gorm:"type:text;not null;index"`
	WorkerID    uuid.UUID `gorm:"type:text;not null"`
	Status      string    `gorm:"not null"`
	Message     string    `gorm:"not null"`
	AppliedAt   time.Time `gorm:"autoCreateTime"`
	RespondedAt *time.Time
}

func (applicationRow) TableName() string { return "task_applications" }

func toTaskRow(t *task.Task) *taskRow {
	return &taskRow{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Category:         string(t.Category),
		Location:         t.Location,
		Latitude:         t.Latitude,
		Longitude:        t.Longitude,
		Price:            t.Price,
		EstimatedTime:    t.EstimatedTime,
		Urgency:          t.Urgency,
		Status:           string(t.Status),
		PosterID:         t.PosterID,
		AssignedWorkerID: t.AssignedWorkerID,
		Images:           t.Images,
		CreatedAt:        t.CreatedAt,
	}
}

func (r *taskRow) toModel(poster *profileRow) *task.Task {
	images := r.Images
	if images == nil {
		images = []string{}
	}
	t := &task.Task{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Category:         task.Category(r.Category),
		Location:         r.Location,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		Price:            r.Price,
		EstimatedTime:    r.EstimatedTime,
		Urgency:          r.Urgency,
		Status:           task.Status(r.Status),
		PosterID:         r.PosterID,
		AssignedWorkerID: r.AssignedWorkerID,
		Images:           images,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.Modified,
	}
	if poster != nil {
		t.Poster = &task.PosterSummary{
			FirstName: poster.FirstName,
			LastName:  poster.LastName,
			Rating:    poster.Rating,
		}
	}
	return t
}

func toApplicationRow(a *application.Application) *applicationRow {
	return &applicationRow{
		ID:       a.ID,
		TaskID:   a.TaskID,
		WorkerID: a.WorkerID,
		Status:   string(a.Status),
		Message:  a.Message,
	}
}

func (r *applicationRow) toModel(worker *profileRow) *application.Application {
	a := &application.Application{
		ID:          r.ID,
		TaskID:      r.TaskID,
		WorkerID:    r.WorkerID,
		Status:      application.Status(r.Status),
		Message:     r.Message,
		AppliedAt:   r.AppliedAt,
		RespondedAt: r.RespondedAt,
	}
	if worker != nil {
		a.Worker = &application.WorkerSummary{
			FirstName: worker.FirstName,
			LastName:  worker.LastName,
			Rating:    worker.Rating,
			Latitude:  worker.Latitude,
			Longitude: worker.Longitude,
		}
	}
	return a
}

func toProfileRow(p *profile.Profile) *profileRow {
	return &profileRow{
		ID:              p.ID,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Email:           p.Email,
		Phone:           p.Phone,
		Address:         p.Address,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		ProfileImageURL: p.ProfileImageURL,
		Rating:          p.Rating,
		TotalRatings:    p.TotalRatings,
		UserRole:        string(p.Role),
	}
}

func (r *profileRow) toModel() *profile.Profile {
	return &profile.Profile{
		ID:              r.ID,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Phone:           r.Phone,
		Address:         r.Address,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		ProfileImageURL: r.ProfileImageURL,
		Rating:          r.Rating,
		TotalRatings:    r.TotalRatings,
		Role:            profile.Role(r.UserRole),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.Modified,
	}
}
