package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"TRIPMATE_BACK-END/internal/config"
	"TRIPMATE_BACK-END/internal/dto"
	"TRIPMATE_BACK-END/internal/models"
	"TRIPMATE_BACK-END/internal/utils"
)

// PlansHandler manages itinerary entries nested under a travel
type PlansHandler struct {
	db     *pgxpool.Pool
	config *config.Config
}

// NewPlansHandler creates a new PlansHandler
func NewPlansHandler(db *pgxpool.Pool, cfg *config.Config) *PlansHandler {
	return &PlansHandler{db: db, config: cfg}
}

// Plans dispatches by HTTP method for /api/travels/{travel_id}/plans
func (h *PlansHandler) Plans(w http.ResponseWriter, r *http.Request, travelID uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		h.ListPlans(w, r, travelID)
	case http.MethodPost:
		h.AddPlan(w, r, travelID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ListPlans handles GET /api/travels/{travel_id}/plans
// @Summary List itinerary entries ordered by (day, sequence)
// @Tags plans
// @Produce json
// @Param travel_id path string true "Travel ID"
// @Success 200 {object} dto.PlanListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/travels/{travel_id}/plans [get]
func (h *PlansHandler) ListPlans(w http.ResponseWriter, r *http.Request, travelID uuid.UUID) {
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
		`SELECT id, travel_id, day_number, sequence, memo,
                place_id, name, address, category, rating, review_count, image_url, latitude, longitude,
                created_at
           FROM plans
          WHERE travel_id = $1
          ORDER BY day_number, sequence`, travelID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	defer rows.Close()

	plans := make([]dto.PlanResponse, 0)
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.TravelID, &p.DayNumber, &p.Sequence, &p.Memo,
			&p.Place.PlaceID, &p.Place.Name, &p.Place.Address, &p.Place.Category,
			&p.Place.Rating, &p.Place.ReviewCount, &p.Place.ImageURL,
			&p.Place.Latitude, &p.Place.Longitude, &p.CreatedAt); err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
			return
		}
		plans = append(plans, toPlanResponse(p))
	}
	if err := rows.Err(); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.PlanListResponse{Plans: plans})
}

// AddPlan handles POST /api/travels/{travel_id}/plans
// The client's sequence field is a hint only: the server assigns the real
// position as MAX(sequence)+1 for the day under an advisory lock, so two
// clients adding to the same day concurrently never collide.
// @Summary Add an itinerary entry
// @Tags plans
// @Accept json
// @Produce json
// @Param travel_id path string true "Travel ID"
// @Param payload body dto.AddPlanRequest true "Plan payload"
// @Success 201 {object} dto.PlanResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/travels/{travel_id}/plans [post]
func (h *PlansHandler) AddPlan(w http.ResponseWriter, r *http.Request, travelID uuid.UUID) {
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
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Only the owner or an editor can modify the itinerary")
		return
	}

	var req dto.AddPlanRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	req.PlaceID = strings.TrimSpace(req.PlaceID)
	req.Name = strings.TrimSpace(req.Name)
	if req.PlaceID == "" || req.Name == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "place_id and name are required")
		return
	}
	if req.DayNumber < 1 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "day_number must be at least 1")
		return
	}
	switch req.Category {
	case models.CategoryLodging, models.CategoryAttraction, models.CategoryRestaurant:
	default:
		req.Category = models.CategoryAttraction
	}

	tx, err := h.db.Begin(r.Context())
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	defer tx.Rollback(r.Context())

	// Serialize sequence assignment per (travel, day)
	if _, err := tx.Exec(r.Context(),
		`SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2::text))`,
		travelID.String(), req.DayNumber); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	var sequence int
	if err := tx.QueryRow(r.Context(),
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM plans WHERE travel_id = $1 AND day_number = $2`,
		travelID, req.DayNumber).Scan(&sequence); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	now := time.Now()
	newID := uuid.New()
	_, err = tx.Exec(r.Context(),
		`INSERT INTO plans (id, travel_id, day_number, sequence, memo,
                place_id, name, address, category, rating, review_count, image_url, latitude, longitude, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		newID, travelID, req.DayNumber, sequence, req.Memo,
		req.PlaceID, req.Name, req.Address, req.Category, req.Rating, req.ReviewCount,
		req.ImageURL, req.Latitude, req.Longitude, now,
	)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	plan := models.Plan{
		ID:        newID,
		TravelID:  travelID,
		DayNumber: req.DayNumber,
		Sequence:  sequence,
		Memo:      req.Memo,
		Place: models.Place{
			PlaceID:     req.PlaceID,
			Name:        req.Name,
			Address:     req.Address,
			Category:    req.Category,
			Rating:      req.Rating,
			ReviewCount: req.ReviewCount,
			ImageURL:    req.ImageURL,
			Latitude:    req.Latitude,
			Longitude:   req.Longitude,
		},
		CreatedAt: now,
	}

	utils.WriteJSONResponse(w, http.StatusCreated, toPlanResponse(plan))
}

// DeletePlan handles DELETE /api/travels/{travel_id}/plans/{plan_id}
// Deletion and renumbering happen in one transaction so the sequence run for
// the affected day stays contiguous 1..N-1.
// @Summary Delete an itinerary entry
// @Tags plans
// @Produce json
// @Param travel_id path string true "Travel ID"
// @Param plan_id path string true "Plan ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/travels/{travel_id}/plans/{plan_id} [delete]
func (h *PlansHandler) DeletePlan(w http.ResponseWriter, r *http.Request, travelID, planID uuid.UUID) {
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
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Only the owner or an editor can modify the itinerary")
		return
	}

	tx, err := h.db.Begin(r.Context())
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	defer tx.Rollback(r.Context())

	var dayNumber, sequence int
	err = tx.QueryRow(r.Context(),
		`SELECT day_number, sequence FROM plans WHERE id = $1 AND travel_id = $2 FOR UPDATE`,
		planID, travelID).Scan(&dayNumber, &sequence)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Plan not found")
		return
	}

	if _, err := tx.Exec(r.Context(),
		`DELETE FROM plans WHERE id = $1`, planID); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	// Pull trailing entries of the same day forward by one
	if _, err := tx.Exec(r.Context(),
		`UPDATE plans SET sequence = sequence - 1
          WHERE travel_id = $1 AND day_number = $2 AND sequence > $3`,
		travelID, dayNumber, sequence); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Plan deleted successfully"})
}

// toPlanResponse converts a plan model to its response shape
func toPlanResponse(p models.Plan) dto.PlanResponse {
	return dto.PlanResponse{
		ID:        p.ID.String(),
		TravelID:  p.TravelID.String(),
		DayNumber: p.DayNumber,
		Sequence:  p.Sequence,
		Memo:      p.Memo,
		Place: dto.PlaceSnapshot{
			PlaceID:     p.Place.PlaceID,
			Name:        p.Place.Name,
			Address:     p.Place.Address,
			Category:    p.Place.Category,
			Rating:      p.Place.Rating,
			ReviewCount: p.Place.ReviewCount,
			ImageURL:    p.Place.ImageURL,
			Latitude:    p.Place.Latitude,
			Longitude:   p.Place.Longitude,
		},
		CreatedAt: utils.FormatTimestamp(p.CreatedAt),
	}
}
