package handlers

import (
	"context"
	"net/http"
	"time"

	"TRIPMATE_BACK-END/internal/dto"
	"TRIPMATE_BACK-END/internal/realtime"
	"TRIPMATE_BACK-END/internal/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler reports process and dependency health
type HealthHandler struct {
	db  *pgxpool.Pool
	hub *realtime.Hub
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(db *pgxpool.Pool, hub *realtime.Hub) *HealthHandler {
	return &HealthHandler{db: db, hub: hub}
}

// HealthCheck handles basic health check (no database)
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// LivenessCheck handles process liveness check
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{Status: "alive"})
}

// ReadinessCheck handles readiness check: database connectivity plus a
// snapshot of the realtime hub's active topics
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	details := map[string]any{}
	if h.hub != nil {
		details["realtime"] = map[string]any{"topics": h.hub.TopicCount()}
	}

	if err := h.db.Ping(ctx); err != nil {
		details["db"] = err.Error()
		utils.WriteJSONResponse(w, http.StatusServiceUnavailable, dto.HealthResponse{
			Status:  "degraded",
			Details: details,
		})
		return
	}

	details["db"] = "ok"
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{
		Status:  "ready",
		Details: details,
	})
}
