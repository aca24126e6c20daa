package dto

// NotificationItem is one in-app notification in responses
type NotificationItem struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	TravelID  string `json:"travel_id"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// NotificationsListResponse envelope
type NotificationsListResponse struct {
	Notifications []NotificationItem `json:"notifications"`
	UnreadCount   int                `json:"unread_count"`
}
