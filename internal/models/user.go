package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account
type User struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Email         string     `json:"email" db:"email"`
	PasswordHash  string     `json:"-" db:"password_hash"` // Hidden from JSON responses
	Username      string     `json:"username" db:"username"`
	DisplayName   *string    `json:"display_name" db:"display_name"`
	AvatarURL     *string    `json:"avatar_url" db:"avatar_url"`
	EmailVerified bool       `json:"email_verified" db:"email_verified"`
	BirthDate     *time.Time `json:"birth_date" db:"birth_date"`
	Role          string     `json:"role" db:"role"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}
