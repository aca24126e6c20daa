package realtime

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"TRIPMATE_BACK-END/internal/config"
	"TRIPMATE_BACK-END/internal/middleware"
	"TRIPMATE_BACK-END/internal/utils"
)

// Handler upgrades HTTP requests to WebSocket connections attached to the hub
type Handler struct {
	hub      *Hub
	jwtCfg   *config.JWTConfig
	rtCfg    *config.RealtimeConfig
	upgrader websocket.Upgrader
}

// NewHandler creates a WebSocket upgrade handler
func NewHandler(hub *Hub, jwtCfg *config.JWTConfig, rtCfg *config.RealtimeConfig) *Handler {
	return &Handler{
		hub:    hub,
		jwtCfg: jwtCfg,
		rtCfg:  rtCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect cross-origin in development
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS handles GET /ws. The credential comes from the Authorization header
// or, for browser WebSocket clients that cannot set headers, a token query
// parameter.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		authHeader := r.Header.Get("Authorization")
		if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Missing credential")
		return
	}

	claims, err := middleware.ValidateToken(tokenString, h.jwtCfg)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid token")
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: upgrade failed: %v", err)
		return
	}

	conn := newConn(h.hub, ws, claims.Email, h.rtCfg.SendBufferSize, h.rtCfg.WriteWait, h.rtCfg.PongWait)
	go conn.writePump()
	conn.readPump()
}
