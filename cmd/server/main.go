package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mentorportal/internal/auth"
	"mentorportal/internal/client/analysis"
	"mentorportal/internal/client/storage"
	"mentorportal/internal/config"
	"mentorportal/internal/folderrules"
	"mentorportal/internal/handler"
	"mentorportal/internal/metrics"
	"mentorportal/internal/middleware"
	analysisService "mentorportal/internal/service/analysis"
	"mentorportal/internal/service/workspace"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	out, closeLog, err := config.LogOutput(cfg)
	if err != nil {
		log.Printf("Failed to open log file, logging to stdout only: %v", err)
	}
	defer closeLog()

	logger := config.NewLogger(cfg, out)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"auth_enabled", cfg.AuthEnabled(),
	)

	// Folder hierarchy rules are embedded; a broken table is a build defect
	rules, err := folderrules.Load()
	if err != nil {
		log.Fatalf("Failed to load folder rules: %v", err)
	}

	// Backend clients
	storageClient := storage.NewClientWithConfig(cfg.StorageBaseURL, cfg.StorageTimeout, logger)
	analysisClient := analysis.NewClientWithConfig(cfg.AnalysisBaseURL, cfg.AnalysisTimeout, logger)

	// Per-session workspaces
	registry := workspace.NewRegistry(workspace.Deps{
		Storage:       storageClient,
		Analysis:      analysisClient,
		Rules:         rules,
		DefaultTeamID: cfg.DefaultTeamID,
		Logger:        logger,
	}, cfg.MaxSessions, cfg.SessionTTL)

	uploadAnalyzer := analysisService.NewUploadAnalyzer(analysisClient, cfg.DefaultTeamID, logger)

	// Optional JWT authentication
	var verifier auth.JWTVerifier
	if cfg.AuthEnabled() {
		jwtVerifier, err := auth.NewJWTVerifier(cfg.AuthJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
		verifier = jwtVerifier
	} else {
		logger.Warn("authentication disabled: AUTH_JWKS_URL is not set")
	}

	// Handlers
	workspaceHandler := handler.NewWorkspaceHandler(registry, cfg.MaxUploadBytes, logger)
	analyzeHandler := handler.NewAnalyzeHandler(uploadAnalyzer, cfg.MaxUploadBytes, logger)
	limiter := middleware.NewRateLimiter(cfg.AnalyzeRatePerMinute)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /metrics", metrics.Handler())

	// Workspace
	mux.HandleFunc("GET /api/workspace", workspaceHandler.GetWorkspace)
	mux.HandleFunc("POST /api/tree/refresh", workspaceHandler.RefreshTree)

	// Folder routes
	mux.HandleFunc("POST /api/folders", workspaceHandler.CreateFolder)
	mux.HandleFunc("POST /api/folders/{id}/toggle", workspaceHandler.ToggleFolder)
	mux.HandleFunc("POST /api/folders/{id}/files", workspaceHandler.UploadFile)
	mux.HandleFunc("POST /api/sync", workspaceHandler.Sync)

	// Folder rules
	mux.HandleFunc("GET /api/rules", workspaceHandler.GetRules)
	mux.HandleFunc("PUT /api/rules/level", workspaceHandler.SetLevel)

	// Document and analysis routes (analysis backend calls are rate limited)
	mux.HandleFunc("POST /api/documents/{id}/select", workspaceHandler.SelectDocument)
	mux.HandleFunc("POST /api/documents/{id}/analyze", limiter.Limit(workspaceHandler.AnalyzeDocument))
	mux.HandleFunc("POST /api/documents/{id}/analysis", workspaceHandler.ViewAnalysis)
	mux.HandleFunc("POST /api/documents/{id}/open", limiter.Limit(workspaceHandler.OpenDocument))
	mux.HandleFunc("DELETE /api/selection", workspaceHandler.ClearSelection)
	mux.HandleFunc("GET /api/analysis", workspaceHandler.GetAnalysis)
	mux.HandleFunc("POST /api/analyze", limiter.Limit(analyzeHandler.Analyze))

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Session → Metrics → Routes
	h = middleware.Metrics(h)
	h = middleware.Session(middleware.SessionOptions{
		CookieName: cfg.SessionCookie,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.Environment != "dev",
	})(h)
	h = middleware.AuthMiddleware(verifier, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     h,
		ReadTimeout: 60 * time.Second,
		// Analyses can take minutes
		WriteTimeout: cfg.AnalysisTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
