package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPMATE_BACK-END/internal/config"
	"TRIPMATE_BACK-END/internal/dto"
	"TRIPMATE_BACK-END/internal/models"
	"TRIPMATE_BACK-END/internal/utils"
)

var errTravelNotFound = errors.New("travel not found")

// travelAccessRole returns the requester's role on a travel: "owner" when
// they created it, otherwise their share role, otherwise "".
// Returns errTravelNotFound when the travel does not exist.
func travelAccessRole(ctx context.Context, db *pgxpool.Pool, travelID, userID uuid.UUID) (string, error) {
	var ownerID uuid.UUID
	if err := db.QueryRow(ctx, `SELECT owner_id FROM travels WHERE id = $1`, travelID).Scan(&ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errTravelNotFound
		}
		return "", err
	}
	if ownerID == userID {
		return models.RoleOwner, nil
	}

	var role string
	err := db.QueryRow(ctx,
		`SELECT role FROM travel_shares WHERE travel_id = $1 AND user_id = $2`,
		travelID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// canEdit reports whether a role may mutate itinerary state
func canEdit(role string) bool {
	return role == models.RoleOwner || role == models.RoleEditor
}

// TravelsHandler manages travel-related endpoints
type TravelsHandler struct {
	db     *pgxpool.Pool
	config *config.Config
}

// NewTravelsHandler creates a new TravelsHandler
func NewTravelsHandler(db *pgxpool.Pool, cfg *config.Config) *TravelsHandler {
	return &TravelsHandler{db: db, config: cfg}
}

// Travels dispatches by HTTP method for /api/travels
func (h *TravelsHandler) Travels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.CreateTravel(w, r)
	case http.MethodGet:
		h.ListTravels(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Travel dispatches by HTTP method for /api/travels/{travel_id}
func (h *TravelsHandler) Travel(w http.ResponseWriter, r *http.Request, travelID uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		h.TravelDetail(w, r, travelID)
	case http.MethodPut, http.MethodPatch:
		h.UpdateTravel(w, r, travelID)
	case http.MethodDelete:
		h.DeleteTravel(w, r, travelID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// CreateTravel handles POST /api/travels
// @Summary Create a new travel
// @Tags travels
// @Accept json
// @Produce json
// @Param payload body dto.CreateTravelRequest true "Travel payload"
// @Success 201 {object} dto.TravelResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/travels [post]
func (h *TravelsHandler) CreateTravel(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	var req dto.CreateTravelRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Departure = strings.ToUpper(strings.TrimSpace(req.Departure))
	req.CountryCode = strings.ToUpper(strings.TrimSpace(req.CountryCode))
	if req.Title == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "title is required")
		return
	}
	if req.TravelerCount < 1 {
		req.TravelerCount = 1
	}

	// Dates may stay unset at creation; the date-picker modal sets them later
	var startDate, endDate *time.Time
	if req.StartDate != nil && *req.StartDate != "" {
		t, err := utils.ParseDate(*req.StartDate)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "start_date must be ISO 8601 format (YYYY-MM-DD)")
			return
		}
		startDate = &t
	}
	if req.EndDate != nil && *req.EndDate != "" {
		t, err := utils.ParseDate(*req.EndDate)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "end_date must be ISO 8601 format (YYYY-MM-DD)")
			return
		}
		endDate = &t
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "end_date cannot be before start_date")
		return
	}

	now := time.Now()
	newID := uuid.New()

	_, err := h.db.Exec(r.Context(),
		`INSERT INTO travels (id, title, start_date, end_date, traveler_count, departure, country_code, owner_id, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		newID, req.Title, startDate, endDate, req.TravelerCount, req.Departure, req.CountryCode, userID, now, now,
	)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	travel := models.Travel{
		ID:            newID,
		Title:         req.Title,
		StartDate:     startDate,
		EndDate:       endDate,
		TravelerCount: req.TravelerCount,
		Departure:     req.Departure,
		CountryCode:   req.CountryCode,
		OwnerID:       userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	utils.WriteJSONResponse(w, http.StatusCreated, h.toTravelResponse(r.Context(), travel))
}

// ListTravels handles GET /api/travels: travels owned by or shared with the requester
// @Summary List accessible travels
// @Tags travels
// @Produce json
// @Success 200 {object} dto.TravelListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/travels [get]
func (h *TravelsHandler) ListTravels(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return
	}

	rows, err := h.db.Query(r.Context(),
		`SELECT DISTINCT t.id, t.title, t.start_date, t.end_date, t.traveler_count, t.departure, t.country_code, t.owner_id, t.created_at, t.updated_at
           FROM travels t
           LEFT JOIN travel_shares s ON s.travel_id = t.id
          WHERE t.owner_id = $1 OR s.user_id = $1
          ORDER BY t.created_at DESC`, userID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	defer rows.Close()

	items := make([]dto.TravelResponse, 0)
	for rows.Next() {
		var t models.Travel
		if err := rows.Scan(&t.ID, &t.Title, &t.StartDate, &t.EndDate, &t.TravelerCount, &t.Departure, &t.CountryCode, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
			return
		}
		items = append(items, h.toTravelResponse(r.Context(), t))
	}
	if err := rows.Err(); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.TravelListResponse{Travels: items})
}

// TravelDetail handles GET /api/travels/{travel_id}
// @Summary Get travel detail
// @Tags travels
// @Produce json
// @Param travel_id path string true "Travel ID"
// @Success 200 {object} dto.TravelResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/travels/{travel_id} [get]
func (h *TravelsHandler) TravelDetail(w http.ResponseWriter, r *http.Request, travelID uuid.UUID) {
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

	var t models.Travel
	err = h.db.QueryRow(r.Context(),
		`SELECT id, title, start_date, end_date, traveler_count, departure, country_code, owner_id, created_at, updated_at
           FROM travels WHERE id = $1`, travelID).Scan(
		&t.ID, &t.Title, &t.StartDate, &t.EndDate, &t.TravelerCount, &t.Departure, &t.CountryCode, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Travel not found")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, h.toTravelResponse(r.Context(), t))
}

// UpdateTravel handles PUT/PATCH /api/travels/{travel_id}
// @Summary Update a travel (title, dates, traveler count)
// @Tags travels
// @Accept json
// @Produce json
// @Param travel_id path string true "Travel ID"
// @Param payload body dto.UpdateTravelRequest true "Update payload"
// @Success 200 {object} dto.TravelResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/travels/{travel_id} [put]
func (h *TravelsHandler) UpdateTravel(w http.ResponseWriter, r *http.Request, travelID uuid.UUID) {
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
	if !canEdit(role) {
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Only the owner or an editor can update this travel")
		return
	}

	// Load current travel
	var cur models.Travel
	err = h.db.QueryRow(r.Context(),
		`SELECT id, title, start_date, end_date, traveler_count, departure, country_code, owner_id, created_at, updated_at
           FROM travels WHERE id = $1`, travelID).Scan(
		&cur.ID, &cur.Title, &cur.StartDate, &cur.EndDate, &cur.TravelerCount, &cur.Departure, &cur.CountryCode, &cur.OwnerID, &cur.CreatedAt, &cur.UpdatedAt,
	)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Travel not found")
		return
	}

	var req dto.UpdateTravelRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	// Prepare new values, default to current if nil
	title := cur.Title
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		if title == "" {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "title cannot be empty")
			return
		}
	}
	startDate := cur.StartDate
	if req.StartDate != nil {
		t, err := utils.ParseDate(strings.TrimSpace(*req.StartDate))
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "start_date must be ISO 8601 format (YYYY-MM-DD)")
			return
		}
		startDate = &t
	}
	endDate := cur.EndDate
	if req.EndDate != nil {
		t, err := utils.ParseDate(strings.TrimSpace(*req.EndDate))
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "end_date must be ISO 8601 format (YYYY-MM-DD)")
			return
		}
		endDate = &t
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "end_date cannot be before start_date")
		return
	}
	travelerCount := cur.TravelerCount
	if req.TravelerCount != nil {
		if *req.TravelerCount < 1 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "traveler_count must be at least 1")
			return
		}
		travelerCount = *req.TravelerCount
	}

	now := time.Now()
	_, err = h.db.Exec(r.Context(),
		`UPDATE travels
            SET title = $1, start_date = $2, end_date = $3, traveler_count = $4, updated_at = $5
          WHERE id = $6`,
		title, startDate, endDate, travelerCount, now, travelID,
	)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	cur.Title = title
	cur.StartDate = startDate
	cur.EndDate = endDate
	cur.TravelerCount = travelerCount
	cur.UpdatedAt = now

	utils.WriteJSONResponse(w, http.StatusOK, h.toTravelResponse(r.Context(), cur))
}

// DeleteTravel handles DELETE /api/travels/{travel_id}
// @Summary Delete a travel
// @Tags travels
// @Produce json
// @Param travel_id path string true "Travel ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/travels/{travel_id} [delete]
func (h *TravelsHandler) DeleteTravel(w http.ResponseWriter, r *http.Request, travelID uuid.UUID) {
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
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Only the owner can delete this travel")
		return
	}

	// Delete travel (CASCADE removes plans, shares, and chat history)
	if _, err := h.db.Exec(r.Context(), `DELETE FROM travels WHERE id = $1`, travelID); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Travel deleted successfully"})
}

// toTravelResponse composes the response shape, resolving the destination
// city from the airports table and falling back to the raw code.
func (h *TravelsHandler) toTravelResponse(ctx context.Context, t models.Travel) dto.TravelResponse {
	destinationCity := t.CountryCode
	if t.CountryCode != "" {
		var city string
		if err := h.db.QueryRow(ctx, `SELECT city FROM airports WHERE code = $1`, t.CountryCode).Scan(&city); err == nil {
			destinationCity = city
		}
	}

	return dto.TravelResponse{
		ID:              t.ID.String(),
		Title:           t.Title,
		StartDate:       utils.FormatDatePtr(t.StartDate),
		EndDate:         utils.FormatDatePtr(t.EndDate),
		TravelerCount:   t.TravelerCount,
		Departure:       t.Departure,
		CountryCode:     t.CountryCode,
		DestinationCity: destinationCity,
		OwnerID:         t.OwnerID.String(),
		CreatedAt:       utils.FormatTimestamp(t.CreatedAt),
		UpdatedAt:       utils.FormatTimestamp(t.UpdatedAt),
	}
}

// writeTravelAccessError maps access-check failures to HTTP responses
func writeTravelAccessError(w http.ResponseWriter, err error) {
	if errors.Is(err, errTravelNotFound) {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Travel not found")
		return
	}
	utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
}
