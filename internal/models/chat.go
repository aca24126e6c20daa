package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one persisted chat line scoped to a travel
type ChatMessage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TravelID  uuid.UUID `json:"travel_id" db:"travel_id"`
	Sender    string    `json:"sender" db:"sender"` // display name or email
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
