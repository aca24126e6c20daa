package dto

// ChatMessageResponse represents one persisted chat message
type ChatMessageResponse struct {
	ID        string `json:"id"`
	TravelID  string `json:"travel_id"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ChatHistoryResponse envelope, oldest first
type ChatHistoryResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
}
