package routes

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"

	"TRIPMATE_BACK-END/internal/config"
	"TRIPMATE_BACK-END/internal/handlers"
	"TRIPMATE_BACK-END/internal/middleware"
	"TRIPMATE_BACK-END/internal/realtime"
	"TRIPMATE_BACK-END/internal/utils"
)

// Handlers bundles everything SetupRoutes wires up
type Handlers struct {
	Auth          *handlers.AuthHandler
	GoogleAuth    *handlers.GoogleAuthHandler
	Profile       *handlers.ProfileHandler
	Travels       *handlers.TravelsHandler
	Plans         *handlers.PlansHandler
	Share         *handlers.ShareHandler
	Chat          *handlers.ChatHandler
	Notifications *handlers.NotificationsHandler
	Places        *handlers.PlacesHandler
	Providers     *handlers.ProvidersHandler
	Health        *handlers.HealthHandler
	Realtime      *realtime.Handler
}

// SetupRoutes configures all application routes
func SetupRoutes(h *Handlers, cfg *config.Config) {
	jwtCfg := &cfg.JWT

	// Health check routes
	http.HandleFunc("/healthz", h.Health.HealthCheck)
	http.HandleFunc("/livez", h.Health.LivenessCheck)
	http.HandleFunc("/readyz", h.Health.ReadinessCheck)

	// Authentication routes
	http.HandleFunc("/api/auth/register", h.Auth.Register)
	http.HandleFunc("/api/auth/login", h.Auth.Login)
	http.HandleFunc("/api/auth/verify-email", h.Auth.VerifyEmail)
	http.HandleFunc("/api/auth/google/login", h.GoogleAuth.GoogleLogin)
	http.HandleFunc("/api/auth/google/callback", h.GoogleAuth.GoogleCallback)

	// Profile routes
	http.HandleFunc("/api/users/me", middleware.AuthMiddleware(h.Profile.Me, jwtCfg))

	// Travel routes. The subtree handler dispatches the nested resources.
	http.HandleFunc("/api/travels", middleware.AuthMiddleware(h.Travels.Travels, jwtCfg))
	http.HandleFunc("/api/travels/", middleware.AuthMiddleware(travelSubtree(h), jwtCfg))

	// Notification routes
	http.HandleFunc("/api/notifications", middleware.AuthMiddleware(h.Notifications.List, jwtCfg))
	http.HandleFunc("/api/notifications/", middleware.AuthMiddleware(notificationSubtree(h), jwtCfg))

	// Place and provider proxy routes
	http.HandleFunc("/api/places/geocode", middleware.AuthMiddleware(h.Places.Geocode, jwtCfg))
	http.HandleFunc("/api/places/search", middleware.AuthMiddleware(h.Places.Search, jwtCfg))
	http.HandleFunc("/api/flights", middleware.AuthMiddleware(h.Providers.Flights, jwtCfg))
	http.HandleFunc("/api/embassy", middleware.AuthMiddleware(h.Providers.Embassy, jwtCfg))
	http.HandleFunc("/api/emergency", middleware.AuthMiddleware(h.Providers.Emergency, jwtCfg))

	// WebSocket hub (authenticates inside the handler, before upgrade)
	http.HandleFunc("/ws", h.Realtime.ServeWS)

	// Swagger documentation
	http.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Root route
	http.HandleFunc("/", rootHandler)
}

// travelSubtree routes /api/travels/{id} and its nested resources:
//
//	/api/travels/{id}
//	/api/travels/{id}/plans
//	/api/travels/{id}/plans/{plan_id}
//	/api/travels/{id}/share
//	/api/travels/{id}/share/{user_id}
//	/api/travels/{id}/chats
func travelSubtree(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/travels/"), "/")
		parts := strings.Split(rest, "/")

		travelID, err := uuid.Parse(parts[0])
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "travel id must be a UUID")
			return
		}

		switch {
		case len(parts) == 1:
			h.Travels.Travel(w, r, travelID)

		case len(parts) == 2 && parts[1] == "plans":
			h.Plans.Plans(w, r, travelID)

		case len(parts) == 3 && parts[1] == "plans":
			planID, err := uuid.Parse(parts[2])
			if err != nil {
				utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "plan id must be a UUID")
				return
			}
			if r.Method != http.MethodDelete {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.Plans.DeletePlan(w, r, travelID, planID)

		case len(parts) == 2 && parts[1] == "share":
			h.Share.Shares(w, r, travelID)

		case len(parts) == 3 && parts[1] == "share":
			targetID, err := uuid.Parse(parts[2])
			if err != nil {
				utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "user id must be a UUID")
				return
			}
			if r.Method != http.MethodDelete {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.Share.RemoveShare(w, r, travelID, targetID)

		case len(parts) == 2 && parts[1] == "chats":
			h.Chat.History(w, r, travelID)

		default:
			http.NotFound(w, r)
		}
	}
}

// notificationSubtree routes /api/notifications/{id}/read
func notificationSubtree(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/notifications/"), "/")
		parts := strings.Split(rest, "/")

		if len(parts) != 2 || parts[1] != "read" {
			http.NotFound(w, r)
			return
		}

		notificationID, err := uuid.Parse(parts[0])
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "notification id must be a UUID")
			return
		}

		h.Notifications.MarkRead(w, r, notificationID)
	}
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Tripmate backend is running."))
}
