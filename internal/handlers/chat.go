package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPMATE_BACK-END/internal/dto"
	"TRIPMATE_BACK-END/internal/models"
	"TRIPMATE_BACK-END/internal/utils"
)

const defaultChatHistoryLimit = 100

// ChatHandler serves persisted chat history. Live delivery happens over the
// websocket hub; this endpoint backfills the room on join.
type ChatHandler struct {
	db *pgxpool.Pool
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(db *pgxpool.Pool) *ChatHandler {
	return &ChatHandler{db: db}
}

// History handles GET /api/travels/{travel_id}/chats
// @Summary Get chat history for a travel, oldest first
// @Tags chat
// @Produce json
// @Param travel_id path string true "Travel ID"
// @Param limit query int false "Max messages to return (default 100)"
// @Success 200 {object} dto.ChatHistoryResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/travels/{travel_id}/chats [get]
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request, travelID uuid.UUID) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	role, err := travelAccessRole(r.Context(), h.db, travelID, userID)
	if err != nil {
		writeTravelAccessError(w, err)
		return
	}
	if role == "" {
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "You do not have access to this travel")
		return
	}

	limit := defaultChatHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	// Newest N rows, then reversed so the client renders oldest first
	rows, err := h.db.Query(r.Context(),
		`SELECT id, travel_id, sender, content, created_at FROM (
            SELECT id, travel_id, sender, content, created_at
              FROM chat_messages
             WHERE travel_id = $1
             ORDER BY created_at DESC
             LIMIT $2
         ) recent ORDER BY created_at`, travelID, limit)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	defer rows.Close()

	messages := make([]dto.ChatMessageResponse, 0)
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.TravelID, &m.Sender, &m.Content, &m.CreatedAt); err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
			return
		}
		messages = append(messages, dto.ChatMessageResponse{
			ID:        m.ID.String(),
			TravelID:  m.TravelID.String(),
			Sender:    m.Sender,
			Content:   m.Content,
			CreatedAt: utils.FormatTimestamp(m.CreatedAt),
		})
	}
	if err := rows.Err(); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ChatHistoryResponse{Messages: messages})
}
