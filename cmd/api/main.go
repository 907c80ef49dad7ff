package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"portfolio-backend/cmd"
	"portfolio-backend/internal/api"
	"portfolio-backend/internal/blog"
	"portfolio-backend/internal/chat"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/database"
)

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	rules, err := chat.LoadRules()
	if err != nil {
		log.Fatalf("Failed to load chat rules: %v", err)
	}

	generator, err := chat.NewGenerator(cfg)
	if err != nil {
		if !errors.Is(err, chat.ErrMissingAPIKey) {
			log.Fatalf("Failed to create LLM client: %v", err)
		}
		// Degrade to a fixed apology on the fallback path rather than
		// refusing to start.
		slog.Warn("hosted LLM provider selected but no API key configured, chat fallback disabled")
		generator = nil
	}

	dispatcher := chat.NewDispatcher(db, rules, generator)
	limiter := api.NewRateLimiter(cfg.ChatRateLimit, cfg.ChatRateWindow)
	feed := blog.NewFeedClient(cfg.BlogFeedURL)

	// --- Chi Router Setup ---
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute)) // local models can be slow

	r.MethodNotAllowed(api.MethodNotAllowedHandler)

	r.Get("/health", api.RestHandler(func(r *http.Request) (any, error) { return nil, nil }))

	api.NewChatService(dispatcher, limiter).AddRoutes(r)
	api.NewProjectService(db, rules).AddRoutes(r)
	api.NewNoteService(db).AddRoutes(r)
	api.NewBlogService(db, feed).AddRoutes(r)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweepExpiredSessions(sweeperCtx, db, cfg.SessionTTL)

	// Goroutine for graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("API server listening on port %d", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %d: %v\n", cfg.Port, err)
	}

	log.Println("Server stopped.")
}

// sweepExpiredSessions deletes chat history past the session TTL so
// abandoned sessions do not accumulate.
func sweepExpiredSessions(ctx context.Context, db *gorm.DB, ttl time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := database.DeleteChatMessagesBefore(ctx, db, time.Now().UTC().Add(-ttl)); err != nil {
				slog.Error("error sweeping expired chat sessions", "error", err)
			}
		}
	}
}
