// @title Tripmate Backend API
// @version 1.0
// @description Tripmate Backend API for collaborative travel planning
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	_ "TRIPMATE_BACK-END/docs" // This is required for swagger
	"TRIPMATE_BACK-END/internal/config"
	"TRIPMATE_BACK-END/internal/handlers"
	"TRIPMATE_BACK-END/internal/realtime"
	"TRIPMATE_BACK-END/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dsn := cfg.GetDSN()
	fmt.Println("Connecting to:", cfg.Database.Host)

	// pgxpool + simple protocol (needed when connecting through PgBouncer)
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatalf("parse dsn: %v", err)
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "tripmate-backend"
	poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.Database.QueryTimeout.Milliseconds())
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	// Ping at boot
	{
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("ping: %v", err)
		}
	}

	// --- Realtime hub ---

	hub := realtime.NewHub()
	hub.OnPublish = chatPersister(pool)
	go hub.Run()
	defer hub.Stop()

	// --- HTTP Handlers ---

	h := &routes.Handlers{
		Auth:          handlers.NewAuthHandler(pool, cfg),
		GoogleAuth:    handlers.NewGoogleAuthHandler(pool, cfg),
		Profile:       handlers.NewProfileHandler(pool),
		Travels:       handlers.NewTravelsHandler(pool, cfg),
		Plans:         handlers.NewPlansHandler(pool, cfg),
		Share:         handlers.NewShareHandler(pool),
		Chat:          handlers.NewChatHandler(pool),
		Notifications: handlers.NewNotificationsHandler(pool),
		Places:        handlers.NewPlacesHandler(cfg),
		Providers:     handlers.NewProvidersHandler(cfg),
		Health:        handlers.NewHealthHandler(pool, hub),
		Realtime:      realtime.NewHandler(hub, &cfg.JWT, &cfg.Realtime),
	}

	// Setup all routes
	routes.SetupRoutes(h, cfg)

	// --- HTTP Server + Graceful Shutdown ---

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})

	// Wrap the default mux with CORS
	handler := c.Handler(http.DefaultServeMux)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	// Wait for SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped.")
}

// chatWireMessage is the body clients publish on chat topics
type chatWireMessage struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// chatPersister stores published chat messages so REST history converges
// with what connected clients saw live. Sync sentinel frames carry no chat
// payload and pass through untouched.
func chatPersister(pool *pgxpool.Pool) func(topic, body string) {
	return func(topic, body string) {
		rest, ok := strings.CutPrefix(topic, "chat/travels/")
		if !ok {
			return
		}
		travelID, err := uuid.Parse(rest)
		if err != nil {
			return
		}

		var msg chatWireMessage
		if err := json.Unmarshal([]byte(body), &msg); err != nil || msg.Content == "" {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := pool.Exec(ctx,
			`INSERT INTO chat_messages (id, travel_id, sender, content, created_at)
             VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), travelID, msg.Sender, msg.Content, time.Now()); err != nil {
			log.Printf("chat: persist failed: %v", err)
		}
	}
}
