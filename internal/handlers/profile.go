package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPMATE_BACK-END/internal/dto"
	"TRIPMATE_BACK-END/internal/models"
	"TRIPMATE_BACK-END/internal/utils"
)

// ProfileHandler manages the authenticated user's profile
type ProfileHandler struct {
	db *pgxpool.Pool
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(db *pgxpool.Pool) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// Me dispatches by HTTP method for /api/users/me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.GetProfile(w, r)
	case http.MethodPut, http.MethodPatch:
		h.UpdateProfile(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// GetProfile handles GET /api/users/me
// @Summary Get own profile
// @Tags users
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/users/me [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	var user models.User
	err := h.db.QueryRow(r.Context(),
		`SELECT id, email, password_hash, username, display_name, avatar_url, email_verified, birth_date, role, created_at, updated_at
		   FROM users WHERE id = $1`, userID).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Username, &user.DisplayName,
		&user.AvatarURL, &user.EmailVerified, &user.BirthDate, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "User not found")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, toUserResponse(user))
}

// UpdateProfile handles PUT /api/users/me
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Param payload body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/users/me [put]
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	var req dto.UpdateProfileRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	// Load current profile
	var cur models.User
	err := h.db.QueryRow(r.Context(),
		`SELECT id, email, password_hash, username, display_name, avatar_url, email_verified, birth_date, role, created_at, updated_at
		   FROM users WHERE id = $1`, userID).Scan(
		&cur.ID, &cur.Email, &cur.PasswordHash, &cur.Username, &cur.DisplayName,
		&cur.AvatarURL, &cur.EmailVerified, &cur.BirthDate, &cur.Role, &cur.CreatedAt, &cur.UpdatedAt,
	)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "User not found")
		return
	}

	username := cur.Username
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
		if username == "" {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "username cannot be empty")
			return
		}
		// Reject a username already taken by someone else
		var otherID string
		if err := h.db.QueryRow(r.Context(),
			`SELECT id FROM users WHERE username = $1 AND id <> $2`, username, userID).Scan(&otherID); err == nil {
			utils.WriteErrorResponse(w, http.StatusConflict, "Username taken", "Another account uses this username")
			return
		}
	}

	displayName := cur.DisplayName
	if req.DisplayName != nil {
		displayName = req.DisplayName
	}
	avatarURL := cur.AvatarURL
	if req.AvatarURL != nil {
		avatarURL = req.AvatarURL
	}

	birthDate := cur.BirthDate
	if req.BirthDate != nil && *req.BirthDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid birth date format", "Use YYYY-MM-DD format")
			return
		}
		birthDate = &parsed
	}

	now := time.Now()
	_, err = h.db.Exec(r.Context(),
		`UPDATE users SET username = $1, display_name = $2, avatar_url = $3, birth_date = $4, updated_at = $5 WHERE id = $6`,
		username, displayName, avatarURL, birthDate, now, userID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	cur.Username = username
	cur.DisplayName = displayName
	cur.AvatarURL = avatarURL
	cur.BirthDate = birthDate
	cur.UpdatedAt = now

	utils.WriteJSONResponse(w, http.StatusOK, toUserResponse(cur))
}
