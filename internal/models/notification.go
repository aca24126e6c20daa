package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app notice for a user, e.g. a travel shared with them
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Type      string    `json:"type" db:"type"` // travel_shared | travel_unshared
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	TravelID  uuid.UUID `json:"travel_id" db:"travel_id"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
