package dto

// GeocodeResponse returns the coordinates resolved for a free-text address
type GeocodeResponse struct {
	Status    string  `json:"status"` // OK | ZERO_RESULTS
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PlaceResult is one nearby-search hit after category normalization
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

// PlaceSearchResponse envelope
type PlaceSearchResponse struct {
	Results []PlaceResult `json:"results"`
}
