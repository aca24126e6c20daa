package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan is one place visit scheduled on a specific day of a travel.
// Within a (travel, day) pair, Sequence values form a contiguous run 1..N.
type Plan struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TravelID  uuid.UUID `json:"travel_id" db:"travel_id"`
	DayNumber int       `json:"day_number" db:"day_number"` // 1-based
	Sequence  int       `json:"sequence" db:"sequence"`     // 1-based position within the day
	Memo      string    `json:"memo" db:"memo"`
	Place     Place     `json:"place"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Place is a snapshot of an external place search result embedded in a plan.
// It is copied at add time; the app never refreshes it from the provider.
type Place struct {
	PlaceID     string  `json:"place_id" db:"place_id"` // external provider id
	Name        string  `json:"name" db:"name"`
	Address     string  `json:"address" db:"address"`
	Category    string  `json:"category" db:"category"` // lodging | attraction | restaurant
	Rating      float64 `json:"rating" db:"rating"`
	ReviewCount int     `json:"review_count" db:"review_count"`
	ImageURL    string  `json:"image_url" db:"image_url"`
	Latitude    float64 `json:"latitude" db:"latitude"`
	Longitude   float64 `json:"longitude" db:"longitude"`
}

// Place categories
const (
	CategoryLodging    = "lodging"
	CategoryAttraction = "attraction"
	CategoryRestaurant = "restaurant"
)

// CategoryFromTypes maps provider type tags to one of the fixed categories.
// Ambiguous tag lists default to attraction.
func CategoryFromTypes(types []string) string {
	for _, t := range types {
		switch t {
		case "lodging", "hotel", "guest_house", "hostel":
			return CategoryLodging
		case "restaurant", "food", "cafe", "bakery", "bar":
			return CategoryRestaurant
		}
	}
	return CategoryAttraction
}
