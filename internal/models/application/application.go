package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Application struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TaskID      uuid.UUID  `json:"task_id" db:"task_id"`
	WorkerID    uuid.UUID  `json:"worker_id" db:"worker_id"`
	Status      Status     `json:"status" db:"status"`
	Message     string     `json:"message" db:"message"`
	AppliedAt   time.Time  `json:"applied_at" db:"applied_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty" db:"responded_at"`

	// заполняется только при выборке списка откликов
	Worker *WorkerSummary `json:"profiles,omitempty"`
}

// WorkerSummary - поля профиля исполнителя, нужные для списка откликов
type WorkerSummary struct {
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Rating    decimal.Decimal `json:"rating"`
	Latitude  *float64        `json:"latitude,omitempty"`
	Longitude *float64        `json:"longitude,omitempty"`
}

type Status string

const StatusPending Status = "pending"
const StatusAccepted Status = "accepted"
const StatusRejected Status = "rejected"

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

// из pending можно уйти только один раз, accepted и rejected конечные
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && (next == StatusAccepted || next == StatusRejected)
}

func New(taskID, workerID uuid.UUID, message string) *Application {
	return &Application{
		TaskID:   taskID,
		WorkerID: workerID,
		Status:   StatusPending,
		Message:  message,
	}
}
