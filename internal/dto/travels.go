package dto

// CreateTravelRequest represents the payload to create a travel
type CreateTravelRequest struct {
	Title         string  `json:"title"`
	StartDate     *string `json:"start_date"` // ISO 8601 (YYYY-MM-DD); may be null until set
	EndDate       *string `json:"end_date"`
	TravelerCount int     `json:"traveler_count"`
	Departure     string  `json:"departure"`    // origin airport code
	CountryCode   string  `json:"country_code"` // destination airport code
}

// UpdateTravelRequest represents fields allowed to update a travel
// All fields are optional; only provided ones will be updated
type UpdateTravelRequest struct {
	Title         *string `json:"title"`
	StartDate     *string `json:"start_date"` // YYYY-MM-DD
	EndDate       *string `json:"end_date"`   // YYYY-MM-DD
	TravelerCount *int    `json:"traveler_count"`
}

// TravelResponse represents a travel object in responses
type TravelResponse struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
	TravelerCount   int     `json:"traveler_count"`
	Departure       string  `json:"departure"`
	CountryCode     string  `json:"country_code"`
	DestinationCity string  `json:"destination_city"`
	OwnerID         string  `json:"owner_id"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// TravelListResponse envelope
type TravelListResponse struct {
	Travels []TravelResponse `json:"travels"`
}
