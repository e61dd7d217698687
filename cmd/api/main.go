// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/config"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/events"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/handler"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/llm"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/middleware"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/service"
	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/store"
	"github.com/nakirhussain8918-star/Cool-boy-chat/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	ctx := context.Background()

	// Initialize storage
	kv, err := store.NewFileKV(cfg.DataDir, cfg.StorageQuotaBytes)
	if err != nil {
		log.Error("failed to initialize storage", zap.Error(err))
		os.Exit(1)
	}
	historyStore := store.NewHistoryStore(kv, log)

	// Initialize generation client
	if cfg.GeminiAPIKey == "" {
		log.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}
	llmClient, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Error("failed to create Gemini client", zap.Error(err))
		os.Exit(1)
	}

	// Connect to NATS if configured; the event feed is optional
	var publisher events.Publisher = events.NewNoop()
	var natsPublisher *events.NATSPublisher
	if cfg.NATSURL != "" {
		natsPublisher, err = events.Connect(ctx, events.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, event feed disabled", zap.Error(err))
		} else {
			publisher = natsPublisher
		}
	}
	defer publisher.Close()

	// Initialize the conversation service
	chatSvc := service.NewChatService(llmClient, historyStore, publisher, cfg.SaveDebounce, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(kv.Dir(), natsPublisher)
	chatHandler := handler.NewChatHandler(chatSvc, log)
	historyHandler := handler.NewHistoryHandler(chatSvc, log)
	settingsHandler := handler.NewSettingsHandler(chatSvc, log)
	promptsHandler := handler.NewPromptsHandler(chatSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/chat", func(r chi.Router) {
			r.Post("/", chatHandler.Send)
			r.Get("/events", chatHandler.Events)
			r.Post("/stop", chatHandler.Stop)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyHandler.List)
			r.Delete("/{mode}", historyHandler.Clear)
			r.Delete("/{mode}/messages/{id}", historyHandler.DeleteMessage)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.Get)
			r.Put("/", settingsHandler.Update)
		})

		r.Route("/prompts", func(r chi.Router) {
			r.Get("/", promptsHandler.List)
			r.Post("/enhance", promptsHandler.Enhance)
		})
	})

	// Create HTTP server. WriteTimeout defaults to 0 so SSE streams are not
	// cut off mid-generation.
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	// Write any pending history snapshot before exit
	chatSvc.Flush()

	log.Info("server stopped")
}
