package dto

// ShareRequest adds a collaborator to a travel by email
type ShareRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"` // editor | viewer; defaults to editor
}

// ShareResponse represents one collaborator entry
type ShareResponse struct {
	ID          string  `json:"id"`
	TravelID    string  `json:"travel_id"`
	UserID      string  `json:"user_id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name"`
	Role        string  `json:"role"`
	CreatedAt   string  `json:"created_at"`
}

// ShareListResponse envelope
type ShareListResponse struct {
	Shares []ShareResponse `json:"shares"`
}
