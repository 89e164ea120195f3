// Package main is the entry point for the brandsight-api server.
// The server tracks brand visibility in LLM answers: it probes a
// configured model with category prompts, detects brand mentions and
// folds them into a 0-100 visibility score per target.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/brandsight/brandsight-api/internal/config"
	"github.com/brandsight/brandsight-api/internal/database"
	"github.com/brandsight/brandsight-api/internal/http/handlers"
	"github.com/brandsight/brandsight-api/internal/http/mw"
	"github.com/brandsight/brandsight-api/internal/logging"
	"github.com/brandsight/brandsight-api/internal/repository"
	"github.com/brandsight/brandsight-api/internal/service"
	"github.com/brandsight/brandsight-api/internal/version"
)

const (
	// defaultRequestTimeout covers CRUD endpoints.
	defaultRequestTimeout = 30 * time.Second
	// llmRequestTimeout covers endpoints that fan out to the LLM: an
	// analysis run makes up to 30 probe calls, target creation fetches a
	// remote page and makes two generation calls.
	llmRequestTimeout = 5 * time.Minute
)

func main() {
	// Initialize logger with TTY detection, source paths, and format control
	logger := logging.SetDefault()

	// Log version info first thing
	v := version.Get()
	logger.Info("starting brandsight-api",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
		"go_version", v.GoVersion,
	)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize storage. Without DATABASE_URL targets live in memory and
	// are lost on restart, which is fine for local development.
	var db *sql.DB
	var repo repository.TargetRepository
	if cfg.HasPersistence() {
		db, err = database.New(cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()

		if err := database.Migrate(db, logger); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		repo = repository.NewSQLiteTargetRepository(db)
	} else {
		logger.Warn("DATABASE_URL not set, targets will be stored in memory only")
		repo = repository.NewMemoryTargetRepository()
	}

	// Initialize services
	services := service.New(cfg, repo, logger)

	// Create router
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Request timeout middleware with different timeouts per endpoint type
	router.Use(mw.Timeout(mw.TimeoutConfig{
		Default:  defaultRequestTimeout,
		Extended: llmRequestTimeout,
		// LLM operations get extended timeout (page fetch + inference)
		ExtendedPatterns: []string{"/analyze", "/init"},
	}))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Request size limit (1MB) - prevent large payload attacks
	router.Use(middleware.RequestSize(1 * 1024 * 1024))

	// Global rate limit by IP
	router.Use(httprate.LimitByIP(100, time.Minute))

	// Global concurrency throttle - prevent system overload
	router.Use(middleware.Throttle(100))

	// Create Huma API config for main API with OpenAPI docs
	humaConfig := huma.DefaultConfig("Brandsight API", "1.0.0")
	humaConfig.Info.Description = "Brand visibility analysis API that measures how often LLMs recommend a brand when answering category questions."
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.BaseURL, Description: "API Server"},
	}

	// Main API with OpenAPI docs
	api := humachi.New(router, humaConfig)

	// Config for hidden routes (K8s probes - no docs needed)
	hiddenConfig := huma.DefaultConfig("Brandsight API", "1.0.0")
	hiddenConfig.DocsPath = ""
	hiddenConfig.OpenAPIPath = ""
	hiddenConfig.SchemasPath = ""
	hiddenAPI := humachi.New(router, hiddenConfig)

	// Health check (public, shown in docs)
	huma.Get(api, "/api/v1/health", handlers.HealthCheck)

	// Kubernetes probes (hidden from docs - internal use only)
	huma.Get(hiddenAPI, "/healthz", handlers.Livez)
	readyzHandler := handlers.NewReadyzHandler(readyzPinger(db))
	huma.Get(hiddenAPI, "/readyz", readyzHandler.Readyz)

	// Target management and analysis routes
	targetHandler := handlers.NewTargetHandler(services.Targets, services.Analysis)
	huma.Post(api, "/api/v1/targets/init", targetHandler.InitTarget)
	huma.Get(api, "/api/v1/targets", targetHandler.ListTargets)
	huma.Get(api, "/api/v1/targets/{id}", targetHandler.GetTarget)
	huma.Put(api, "/api/v1/targets/{id}/keywords", targetHandler.UpdateKeywords)
	huma.Put(api, "/api/v1/targets/{id}/prompts", targetHandler.UpdatePrompts)
	huma.Delete(api, "/api/v1/targets/{id}", targetHandler.DeleteTarget)
	huma.Post(api, "/api/v1/targets/{id}/analyze", targetHandler.Analyze)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: llmRequestTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		<-sigChan

		logger.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	// Start server
	mode := "live"
	if !cfg.LLMConfigured() {
		mode = "simulation"
	}
	logger.Info("starting server", "port", cfg.Port, "base_url", cfg.BaseURL, "provider", cfg.LLMProvider, "mode", mode)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// readyzPinger avoids handing the probe a typed nil when the server runs
// without a database.
func readyzPinger(db *sql.DB) handlers.DBPinger {
	if db == nil {
		return nil
	}
	return db
}
