package dto

// AddPlanRequest represents the payload to add an itinerary entry.
// Sequence is a client hint only; the server assigns the real position
// atomically at insert time.
type AddPlanRequest struct {
	PlaceID     string  `json:"place_id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Category    string  `json:"category"` // lodging | attraction | restaurant
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	ImageURL    string  `json:"image_url"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DayNumber   int     `json:"day_number"`
	Sequence    int     `json:"sequence"`
	Memo        string  `json:"memo"`
}

// PlanResponse represents one itinerary entry in responses
type PlanResponse struct {
	ID        string        `json:"id"`
	TravelID  string        `json:"travel_id"`
	DayNumber int           `json:"day_number"`
	Sequence  int           `json:"sequence"`
	Memo      string        `json:"memo"`
	Place     PlaceSnapshot `json:"place"`
	CreatedAt string        `json:"created_at"`
}

// PlaceSnapshot is the embedded place copy inside a plan response
type PlaceSnapshot struct {
	PlaceID     string  `json:"place_id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	ImageURL    string  `json:"image_url"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// PlanListResponse envelope, ordered by (day_number, sequence)
type PlanListResponse struct {
	Plans []PlanResponse `json:"plans"`
}
