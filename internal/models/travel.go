package models

import (
	"time"

	"github.com/google/uuid"
)

// Travel represents a planned journey owned by a user
type Travel struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	StartDate     *time.Time `json:"start_date" db:"start_date"` // nil until the owner picks dates
	EndDate       *time.Time `json:"end_date" db:"end_date"`
	TravelerCount int        `json:"traveler_count" db:"traveler_count"`
	Departure     string     `json:"departure" db:"departure"`       // origin airport code, e.g. ICN
	CountryCode   string     `json:"country_code" db:"country_code"` // destination airport code, e.g. NRT
	OwnerID       uuid.UUID  `json:"owner_id" db:"owner_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// TravelShare grants a collaborator access to a travel under a role
type TravelShare struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TravelID  uuid.UUID `json:"travel_id" db:"travel_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"` // owner | editor | viewer
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Share roles
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)
