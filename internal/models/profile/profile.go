package profile

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Profile struct {
	ID              uuid.UUID       `json:"id"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	Address         string          `json:"address,omitempty"`
	Latitude        *float64        `json:"latitude,omitempty"`
	Longitude       *float64        `json:"longitude,omitempty"`
	ProfileImageURL string          `json:"profile_image_url,omitempty"`
	Rating          decimal.Decimal `json:"rating"`
	TotalRatings    int             `json:"total_ratings"`
	Role            Role            `json:"user_role"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
}

type Role string

const RoleTaskProvider Role = "task_provider"
const RoleGigWorker Role = "gig_worker"
const RoleBoth Role = "both"

func (r Role) Valid() bool {
	return r == RoleTaskProvider || r == RoleGigWorker || r == RoleBoth
}

func (p *Profile) DisplayName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + string([]rune(p.LastName)[:1]) + "."
}
