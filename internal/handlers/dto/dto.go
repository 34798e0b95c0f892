package dto

import (
	"taskMap/internal/geo"
	"taskMap/internal/listing"
	"taskMap/internal/models/application"
	"taskMap/internal/models/task"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTaskRequest: price принимается и числом, и строкой ("25.00")
type CreateTaskRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	Location      string          `json:"location"`
	Latitude      *float64        `json:"latitude,omitempty"`
	Longitude     *float64        `json:"longitude,omitempty"`
	EstimatedTime string          `json:"estimated_time"`
	Urgency       string          `json:"urgency"`
	Images        []string        `json:"images,omitempty"`
}

type ApplyRequest struct {
	Message string `json:"message"`
}

type ProfileRequest struct {
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Address         string   `json:"address"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	ProfileImageURL string   `json:"profile_image_url"`
	Role            string   `json:"user_role"`
}

type PosterResponse struct {
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Rating    decimal.Decimal `json:"rating"`
}

type TaskResponse struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Location      string          `json:"location"`
	Latitude      float64         `json:"latitude"`
	Longitude     float64         `json:"longitude"`
	Price         decimal.Decimal `json:"price"`
	EstimatedTime string          `json:"estimated_time"`
	Urgency       string          `json:"urgency"`
	Status        string          `json:"status"`
	PosterID      uuid.UUID       `json:"poster_id"`
	Images        []string        `json:"images"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
	Poster        *PosterResponse `json:"profiles"`
	Sample        bool            `json:"sample,omitempty"`
}

func FromTask(t *task.Task) TaskResponse {
	resp := TaskResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Category:      string(t.Category),
		Location:      t.Location,
		Latitude:      t.Latitude,
		Longitude:     t.Longitude,
		Price:         t.Price,
		EstimatedTime: t.EstimatedTime,
		Urgency:       t.Urgency,
		Status:        string(t.Status),
		PosterID:      t.PosterID,
		Images:        t.Images,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	if t.Poster != nil {
		resp.Poster = &PosterResponse{
			FirstName: t.Poster.FirstName,
			LastName:  t.Poster.LastName,
			Rating:    t.Poster.Rating,
		}
	}
	return resp
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type ListingResponse struct {
	Tasks      []TaskResponse  `json:"tasks"`
	Categories []listing.Facet `json:"categories"`
	Total      int             `json:"total"`
	Source     listing.Source  `json:"source"`
	Error      string          `json:"error,omitempty"`
}

func FromView(v listing.View) ListingResponse {
	resp := ListingResponse{
		Tasks:      FromTaskList(v.Tasks),
		Categories: v.Categories,
		Total:      v.Total,
		Source:     v.Source,
		Error:      v.Error,
	}
	if resp.Categories == nil {
		resp.Categories = []listing.Facet{}
	}
	if v.Source == listing.SourceSample {
		for i := range resp.Tasks {
			resp.Tasks[i].Sample = true
		}
	}
	return resp
}

type CreateTaskResponse struct {
	Task      TaskResponse   `json:"task"`
	OpenTasks []TaskResponse `json:"open_tasks"`
	Refreshed bool           `json:"refreshed"`
}

type ApplicationResponse struct {
	ID          uuid.UUID                  `json:"id"`
	TaskID      uuid.UUID                  `json:"task_id"`
	WorkerID    uuid.UUID                  `json:"worker_id"`
	Status      string                     `json:"status"`
	Message     string                     `json:"message"`
	AppliedAt   time.Time                  `json:"applied_at"`
	RespondedAt *time.Time                 `json:"responded_at,omitempty"`
	Worker      *application.WorkerSummary `json:"profiles,omitempty"`
}

func FromApplication(a *application.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:          a.ID,
		TaskID:      a.TaskID,
		WorkerID:    a.WorkerID,
		Status:      string(a.Status),
		Message:     a.Message,
		AppliedAt:   a.AppliedAt,
		RespondedAt: a.RespondedAt,
		Worker:      a.Worker,
	}
}

func FromApplicationList(apps []*application.Application) []ApplicationResponse {
	result := make([]ApplicationResponse, len(apps))
	for i, a := range apps {
		result[i] = FromApplication(a)
	}
	return result
}

type MapResponse struct {
	Map    *geo.Map       `json:"map"`
	Total  int            `json:"total"`
	Source listing.Source `json:"source"`
	Error  string         `json:"error,omitempty"`
}

// ToPoints превращает задачи в маркеры карты
func ToPoints(tasks []*task.Task) []geo.Point {
	points := make([]geo.Point, 0, len(tasks))
	for _, t := range tasks {
		points = append(points, geo.Point{
			ID:    t.ID.String(),
			Lat:   t.Latitude,
			Lng:   t.Longitude,
			Label: t.Title,
		})
	}
	return points
}
