package task

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Task struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	Title            string          `json:"title" db:"title"`
	Description      string          `json:"description" db:"description"`
	Category         Category        `json:"category" db:"category"`
	Location         string          `json:"location" db:"location"`
	Latitude         float64         `json:"latitude" db:"latitude"`
	Longitude        float64         `json:"longitude" db:"longitude"`
	Price            decimal.Decimal `json:"price" db:"price"`
	EstimatedTime    string          `json:"estimated_time" db:"estimated_time"`
	Urgency          string          `json:"urgency" db:"urgency"`
	Status           Status          `json:"status" db:"status"`
	PosterID         uuid.UUID       `json:"poster_id" db:"poster_id"`
	AssignedWorkerID *uuid.UUID      `json:"assigned_worker_id,omitempty" db:"assigned_worker_id"`
	Images           []string        `json:"images" db:"images"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty" db:"updated_at"`

	// заполняется при чтении, в таблице tasks не хранится
	Poster *PosterSummary `json:"profiles"`
}

// PosterSummary - краткий профиль автора задачи для отображения в карточке
type PosterSummary struct {
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Rating    decimal.Decimal `json:"rating"`
}

// Category - открытый тег, новые категории появляются без изменения кода
type Category string

const CategoryAll Category = "all"

type Status string

const StatusOpen Status = "open"
const StatusInProgress Status = "in_progress"
const StatusCompleted Status = "completed"
const StatusCancelled Status = "cancelled"

var transitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo сообщает, разрешён ли переход; сами переходы выполняет внешняя сторона
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}
