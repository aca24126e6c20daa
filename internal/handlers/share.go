package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPMATE_BACK-END/internal/dto"
	"TRIPMATE_BACK-END/internal/models"
	"TRIPMATE_BACK-END/internal/utils"
)

// ShareHandler manages collaborator access on a travel. Only the owner may
// grant or revoke access.
type ShareHandler struct {
	db *pgxpool.Pool
}

// NewShareHandler creates a new ShareHandler
func NewShareHandler(db *pgxpool.Pool) *ShareHandler {
	return &ShareHandler{db: db}
}

// Shares dispatches by HTTP method for /api/travels/{travel_id}/share
func (h *ShareHandler) Shares(w http.ResponseWriter, r *http.Request, travelID uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		h.ListShares(w, r, travelID)
	case http.MethodPost:
		h.AddShare(w, r, travelID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ListShares handles GET /api/travels/{travel_id}/share
// @Summary List collaborators on a travel
// @Tags share
// @Produce json
// @Param travel_id path string true "Travel ID"
// @Success 200 {object} dto.ShareListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/travels/{travel_id}/share [get]
func (h *ShareHandler) ListShares(w http.ResponseWriter, r *http.Request, travelID uuid.UUID) {
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

	rows, err := h.db.Query(r.Context(),
		`SELECT s.id, s.travel_id, s.user_id, u.email, u.display_name, s.role, s.created_at
           FROM travel_shares s
           JOIN users u ON u.id = s.user_id
          WHERE s.travel_id = $1
          ORDER BY s.created_at`, travelID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	defer rows.Close()

	shares := make([]dto.ShareResponse, 0)
	for rows.Next() {
		var (
			id, tid, uid uuid.UUID
			email, role  string
			displayName  *string
			createdAt    time.Time
		)
		if err := rows.Scan(&id, &tid, &uid, &email, &displayName, &role, &createdAt); err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
			return
		}
		shares = append(shares, dto.ShareResponse{
			ID:          id.String(),
			TravelID:    tid.String(),
			UserID:      uid.String(),
			Email:       email,
			DisplayName: displayName,
			Role:        role,
			CreatedAt:   utils.FormatTimestamp(createdAt),
		})
	}
	if err := rows.Err(); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ShareListResponse{Shares: shares})
}

// AddShare handles POST /api/travels/{travel_id}/share
// @Summary Share a travel with another user by email
// @Tags share
// @Accept json
// @Produce json
// @Param travel_id path string true "Travel ID"
// @Param payload body dto.ShareRequest true "Share payload"
// @Success 201 {object} dto.ShareResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/travels/{travel_id}/share [post]
func (h *ShareHandler) AddShare(w http.ResponseWriter, r *http.Request, travelID uuid.UUID) {
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
	if role != models.RoleOwner {
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Only the owner can share this travel")
		return
	}

	var req dto.ShareRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "email is required")
		return
	}
	switch req.Role {
	case models.RoleEditor, models.RoleViewer:
	case "":
		req.Role = models.RoleEditor
	default:
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "role must be editor or viewer")
		return
	}

	var (
		targetID    uuid.UUID
		displayName *string
	)
	err = h.db.QueryRow(r.Context(),
		`SELECT id, display_name FROM users WHERE email = $1`, req.Email).Scan(&targetID, &displayName)
	if errors.Is(err, pgx.ErrNoRows) {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "No account exists with this email")
		return
	}
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	if targetID == userID {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "You cannot share a travel with yourself")
		return
	}

	var existing uuid.UUID
	err = h.db.QueryRow(r.Context(),
		`SELECT id FROM travel_shares WHERE travel_id = $1 AND user_id = $2`,
		travelID, targetID).Scan(&existing)
	if err == nil {
		utils.WriteErrorResponse(w, http.StatusConflict, "Already shared", "This user already has access to the travel")
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	now := time.Now()
	shareID := uuid.New()
	_, err = h.db.Exec(r.Context(),
		`INSERT INTO travel_shares (id, travel_id, user_id, role, created_at)
         VALUES ($1, $2, $3, $4, $5)`,
		shareID, travelID, targetID, req.Role, now)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	h.notifyShareChange(r, travelID, targetID, "travel_shared")

	utils.WriteJSONResponse(w, http.StatusCreated, dto.ShareResponse{
		ID:          shareID.String(),
		TravelID:    travelID.String(),
		UserID:      targetID.String(),
		Email:       req.Email,
		DisplayName: displayName,
		Role:        req.Role,
		CreatedAt:   utils.FormatTimestamp(now),
	})
}

// RemoveShare handles DELETE /api/travels/{travel_id}/share/{user_id}
// @Summary Revoke a collaborator's access
// @Tags share
// @Produce json
// @Param travel_id path string true "Travel ID"
// @Param user_id path string true "Collaborator user ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/travels/{travel_id}/share/{user_id} [delete]
func (h *ShareHandler) RemoveShare(w http.ResponseWriter, r *http.Request, travelID, targetID uuid.UUID) {
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
	// Collaborators may remove themselves; otherwise only the owner revokes
	if role != models.RoleOwner && userID != targetID {
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Only the owner can revoke access")
		return
	}

	tag, err := h.db.Exec(r.Context(),
		`DELETE FROM travel_shares WHERE travel_id = $1 AND user_id = $2`,
		travelID, targetID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	if tag.RowsAffected() == 0 {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "This user has no access to the travel")
		return
	}

	if userID != targetID {
		h.notifyShareChange(r, travelID, targetID, "travel_unshared")
	}

	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Share removed successfully"})
}

// notifyShareChange records an in-app notification for the affected user.
// Notification failures never fail the share operation itself.
func (h *ShareHandler) notifyShareChange(r *http.Request, travelID, targetID uuid.UUID, kind string) {
	var title string
	err := h.db.QueryRow(r.Context(), `SELECT title FROM travels WHERE id = $1`, travelID).Scan(&title)
	if err != nil {
		return
	}

	var noticeTitle, message string
	switch kind {
	case "travel_shared":
		noticeTitle = "Travel shared with you"
		message = fmt.Sprintf("You now have access to %q", title)
	case "travel_unshared":
		noticeTitle = "Travel access removed"
		message = fmt.Sprintf("Your access to %q was revoked", title)
	default:
		return
	}

	_, _ = h.db.Exec(r.Context(),
		`INSERT INTO notifications (id, user_id, type, title, message, travel_id, read, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)`,
		uuid.New(), targetID, kind, noticeTitle, message, travelID, time.Now())
}
