package handlers

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"TRIPMATE_BACK-END/internal/config"
	"TRIPMATE_BACK-END/internal/dto"
	"TRIPMATE_BACK-END/internal/middleware"
	"TRIPMATE_BACK-END/internal/models"
	"TRIPMATE_BACK-END/internal/utils"
)

const verificationCodeTTL = 10 * time.Minute

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	db     *pgxpool.Pool
	config *config.Config
	email  *utils.EmailService
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(db *pgxpool.Pool, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, config: cfg, email: utils.NewEmailService(&cfg.Email)}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a new user account with username, email, and password. A verification code is mailed to the address.
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration data"
// @Success 201 {object} dto.AuthResponse "User created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "User already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.RegisterRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required fields", "Username, email, and password are required")
		return
	}

	// Check if user already exists
	var existingUserID uuid.UUID
	err := h.db.QueryRow(r.Context(),
		"SELECT id FROM users WHERE email = $1 OR username = $2",
		req.Email, req.Username).Scan(&existingUserID)
	if err == nil {
		utils.WriteErrorResponse(w, http.StatusConflict, "User already exists", "Email or username already registered")
		return
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password", err.Error())
		return
	}

	// Parse birth date if provided
	var birthDate *time.Time
	if req.BirthDate != nil && *req.BirthDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid birth date format", "Use YYYY-MM-DD format")
			return
		}
		birthDate = &parsed
	}

	userID := uuid.New()
	now := time.Now()

	_, err = h.db.Exec(r.Context(),
		`INSERT INTO users (id, email, password_hash, username, display_name, email_verified, birth_date, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7, $8, $9)`,
		userID, req.Email, string(hashedPassword), req.Username, req.DisplayName, birthDate, "user", now, now)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create user", err.Error())
		return
	}

	// Issue a verification code and mail it. Mail failure must not block
	// signup; the user can request a new code later.
	if h.config.IsEmailConfigured() {
		code := generateVerificationCode()
		_, err = h.db.Exec(r.Context(),
			`INSERT INTO email_verifications (user_id, code, expires_at) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id) DO UPDATE SET code = $2, expires_at = $3`,
			userID, code, now.Add(verificationCodeTTL))
		if err != nil {
			log.Printf("Failed to store verification code for %s: %v", req.Email, err)
		} else if err := h.email.SendVerificationCode(req.Email, code); err != nil {
			log.Printf("Failed to send verification code to %s: %v", req.Email, err)
		}
	}

	// Generate JWT token
	token, err := middleware.GenerateToken(userID, req.Email, &h.config.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", err.Error())
		return
	}

	user := models.User{
		ID:          userID,
		Email:       req.Email,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		BirthDate:   birthDate,
		Role:        "user",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	utils.WriteJSONResponse(w, http.StatusCreated, dto.AuthResponse{
		User:  toUserResponse(user),
		Token: token,
	})
}

// Login handles user login
// @Summary Log in
// @Description Authenticate with email and password; returns a JWT token
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.LoginRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err := h.db.QueryRow(r.Context(),
		`SELECT id, email, password_hash, username, display_name, avatar_url, email_verified, birth_date, role, created_at, updated_at
		   FROM users WHERE email = $1`, req.Email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Username, &user.DisplayName,
		&user.AvatarURL, &user.EmailVerified, &user.BirthDate, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", "Email or password is incorrect")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", "Email or password is incorrect")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, &h.config.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.AuthResponse{
		User:  toUserResponse(user),
		Token: token,
	})
}

// VerifyEmail handles the signup verification code
// @Summary Verify email address
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.VerifyEmailRequest true "Verification payload"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.VerifyEmailRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required fields", "Email and code are required")
		return
	}

	var userID uuid.UUID
	var code string
	var expiresAt time.Time
	err := h.db.QueryRow(r.Context(),
		`SELECT u.id, v.code, v.expires_at
		   FROM users u JOIN email_verifications v ON v.user_id = u.id
		  WHERE u.email = $1`, req.Email).Scan(&userID, &code, &expiresAt)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Verification failed", "No pending verification for this email")
		return
	}

	if code != req.Code || time.Now().After(expiresAt) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Verification failed", "Code is invalid or expired")
		return
	}

	_, err = h.db.Exec(r.Context(),
		`UPDATE users SET email_verified = TRUE, updated_at = $1 WHERE id = $2`, time.Now(), userID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	_, _ = h.db.Exec(r.Context(), `DELETE FROM email_verifications WHERE user_id = $1`, userID)

	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Email verified successfully"})
}

// generateVerificationCode returns a 6-digit numeric code
func generateVerificationCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failure is effectively unreachable; fall back to a fixed width
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// toUserResponse converts a user model to its response shape
func toUserResponse(u models.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:            u.ID.String(),
		Email:         u.Email,
		Username:      u.Username,
		DisplayName:   u.DisplayName,
		AvatarURL:     u.AvatarURL,
		EmailVerified: u.EmailVerified,
		Role:          u.Role,
		CreatedAt:     utils.FormatTimestamp(u.CreatedAt),
		UpdatedAt:     utils.FormatTimestamp(u.UpdatedAt),
	}
	if u.BirthDate != nil {
		s := utils.FormatDate(*u.BirthDate)
		resp.BirthDate = &s
	}
	return resp
}
