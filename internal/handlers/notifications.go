package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPMATE_BACK-END/internal/dto"
	"TRIPMATE_BACK-END/internal/models"
	"TRIPMATE_BACK-END/internal/utils"
)

// NotificationsHandler lists in-app notifications and marks them read
type NotificationsHandler struct {
	db *pgxpool.Pool
}

// NewNotificationsHandler creates a new NotificationsHandler
func NewNotificationsHandler(db *pgxpool.Pool) *NotificationsHandler {
	return &NotificationsHandler{db: db}
}

// List handles GET /api/notifications
// @Summary List own notifications, newest first
// @Tags notifications
// @Produce json
// @Success 200 {object} dto.NotificationsListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/notifications [get]
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	rows, err := h.db.Query(r.Context(),
		`SELECT id, user_id, type, title, message, travel_id, read, created_at
           FROM notifications
          WHERE user_id = $1
          ORDER BY created_at DESC
          LIMIT 50`, userID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	defer rows.Close()

	items := make([]dto.NotificationItem, 0)
	unread := 0
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.TravelID, &n.Read, &n.CreatedAt); err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
			return
		}
		if !n.Read {
			unread++
		}
		items = append(items, dto.NotificationItem{
			ID:        n.ID.String(),
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			TravelID:  n.TravelID.String(),
			Read:      n.Read,
			CreatedAt: utils.FormatTimestamp(n.CreatedAt),
		})
	}
	if err := rows.Err(); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.NotificationsListResponse{
		Notifications: items,
		UnreadCount:   unread,
	})
}

// MarkRead handles POST /api/notifications/{notification_id}/read
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Param notification_id path string true "Notification ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/notifications/{notification_id}/read [post]
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request, notificationID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	tag, err := h.db.Exec(r.Context(),
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		notificationID, userID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	if tag.RowsAffected() == 0 {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Notification not found")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}
