package client

// Wire types returned by the backend. Field names follow the server's JSON
// contract exactly.

// User is the account profile shape
type User struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Username      string  `json:"username"`
	DisplayName   *string `json:"display_name"`
	AvatarURL     *string `json:"avatar_url"`
	EmailVerified bool    `json:"email_verified"`
	CreatedAt     string  `json:"created_at"`
}

// AuthResult is returned by Register and Login
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Travel is one trip
type Travel struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	TravelerCount   int    `json:"traveler_count"`
	Departure       string `json:"departure"`
	CountryCode     string `json:"country_code"`
	DestinationCity string `json:"destination_city"`
	OwnerID         string `json:"owner_id"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// CreateTravelRequest creates a trip; dates may stay unset
type CreateTravelRequest struct {
	Title         string  `json:"title"`
	StartDate     *string `json:"start_date,omitempty"`
	EndDate       *string `json:"end_date,omitempty"`
	TravelerCount int     `json:"traveler_count"`
	Departure     string  `json:"departure,omitempty"`
	CountryCode   string  `json:"country_code,omitempty"`
}

// UpdateTravelRequest patches a trip; nil fields keep their value
type UpdateTravelRequest struct {
	Title         *string `json:"title,omitempty"`
	StartDate     *string `json:"start_date,omitempty"`
	EndDate       *string `json:"end_date,omitempty"`
	TravelerCount *int    `json:"traveler_count,omitempty"`
}

// PlaceSnapshot is the place data captured inside a plan
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

// Plan is one itinerary entry. Within a (travel, day) pair sequences run
// contiguously from 1.
type Plan struct {
	ID        string        `json:"id"`
	TravelID  string        `json:"travel_id"`
	DayNumber int           `json:"day_number"`
	Sequence  int           `json:"sequence"`
	Memo      string        `json:"memo"`
	Place     PlaceSnapshot `json:"place"`
	CreatedAt string        `json:"created_at"`
}

// AddPlanRequest adds a place to a day. Sequence is assigned server-side.
type AddPlanRequest struct {
	DayNumber   int     `json:"day_number"`
	Memo        string  `json:"memo,omitempty"`
	PlaceID     string  `json:"place_id"`
	Name        string  `json:"name"`
	Address     string  `json:"address,omitempty"`
	Category    string  `json:"category,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	ReviewCount int     `json:"review_count,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
}

// Share is one collaborator entry on a travel
type Share struct {
	ID          string  `json:"id"`
	TravelID    string  `json:"travel_id"`
	UserID      string  `json:"user_id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name"`
	Role        string  `json:"role"`
	CreatedAt   string  `json:"created_at"`
}

// ChatMessage is one persisted chat line
type ChatMessage struct {
	ID        string `json:"id"`
	TravelID  string `json:"travel_id"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// PlaceResult is one place-search hit
type PlaceResult struct {
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

// envelopes

type travelListEnvelope struct {
	Travels []Travel `json:"travels"`
}

type planListEnvelope struct {
	Plans []Plan `json:"plans"`
}

type shareListEnvelope struct {
	Shares []Share `json:"shares"`
}

type chatHistoryEnvelope struct {
	Messages []ChatMessage `json:"messages"`
}

type placeSearchEnvelope struct {
	Results []PlaceResult `json:"results"`
}

type geocodeEnvelope struct {
	Status    string  `json:"status"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
