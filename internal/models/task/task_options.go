package task

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TaskOption func(*Task)

// New собирает новую задачу в статусе open; id и created_at выдаёт хранилище.
// Пустые опции (nil) пропускаются.
func New(posterID uuid.UUID, title, description string, category Category, price decimal.Decimal, opts ...TaskOption) *Task {
	t := &Task{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Category:    Category(strings.TrimSpace(string(category))),
		Price:       price,
		Status:      StatusOpen,
		PosterID:    posterID,
		Images:      []string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

func WithLocation(location string) TaskOption {
	if location == "" {
		return nil
	}
	return func(task *Task) {
		task.Location = strings.TrimSpace(location)
	}
}

func WithCoordinates(lat, lng float64) TaskOption {
	return func(task *Task) {
		task.Latitude = lat
		task.Longitude = lng
	}
}

func WithEstimatedTime(estimated string) TaskOption {
	if estimated == "" {
		return nil
	}
	return func(task *Task) {
		task.EstimatedTime = estimated
	}
}

func WithUrgency(urgency string) TaskOption {
	if urgency == "" {
		return nil
	}
	return func(task *Task) {
		task.Urgency = urgency
	}
}

func WithImages(images []string) TaskOption {
	if len(images) == 0 {
		return nil
	}
	return func(task *Task) {
		task.Images = append([]string{}, images...)
	}
}
