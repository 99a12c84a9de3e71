package main

import (
	"crypto/tls"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/budgetvisor/backend/src/config"
	"github.com/username/budgetvisor/backend/src/database"
	"github.com/username/budgetvisor/backend/src/handlers"
	"github.com/username/budgetvisor/backend/src/logger"
	"github.com/username/budgetvisor/backend/src/parsers/budgetspec"
	"github.com/username/budgetvisor/backend/src/processors"
	"github.com/username/budgetvisor/backend/src/security"
	"github.com/username/budgetvisor/backend/src/services"
	"golang.org/x/time/rate"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000":    true,
			config.Cfg.FrontendBaseURL: true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("BudgetVisor backend server starting...")

	if len(config.Cfg.SessionSecret) < 32 {
		logger.L.Error("SESSION_SECRET configuration invalid, must be at least 32 characters.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	budgetCache := cache.New(cache.NoExpiration, services.CacheCleanupInterval)
	reportCache := cache.New(config.Cfg.ReportCacheExpiry, services.CacheCleanupInterval)

	sessionService := security.NewSessionService(config.Cfg.SessionSecret, config.Cfg.SessionExpiry)

	budgetService := services.NewBudgetService(budgetCache)
	if config.Cfg.DefaultBudgetPath != "" {
		document, err := os.ReadFile(config.Cfg.DefaultBudgetPath)
		if err != nil {
			logger.L.Error("Failed to load default budget document", "path", config.Cfg.DefaultBudgetPath, "error", err)
		} else if _, err := budgetspec.Parse(document); err != nil {
			logger.L.Error("Default budget document is invalid", "path", config.Cfg.DefaultBudgetPath, "error", err)
		} else {
			budgetService.SetDefaultDocument(document)
			logger.L.Info("Default budget document loaded", "path", config.Cfg.DefaultBudgetPath)
		}
	}
	strategy := processors.SubstringStrategy{MinLength: config.Cfg.FuzzyMatchMinLength}
	reportService := services.NewReportService(budgetService, strategy, reportCache)
	budgetService.SetReportService(reportService)
	uploadService := services.NewUploadService(reportService)

	sessionMiddleware := handlers.NewSessionMiddleware(sessionService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	uploadHandler := handlers.NewUploadHandler(uploadService)
	reportHandler := handlers.NewReportHandler(reportService)
	mappingHandler := handlers.NewMappingHandler(budgetService, reportService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "BudgetVisor Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/session", sessionHandler.HandleCreateSession)
		})

		// Session-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware.Require)

			r.Post("/budget", budgetHandler.HandleUploadBudget)
			r.Get("/budget", budgetHandler.HandleGetBudget)
			r.Patch("/budget", budgetHandler.HandleApplyEdits)
			r.Get("/budget/flat", budgetHandler.HandleGetFlatCategories)
			r.Get("/budget/export", budgetHandler.HandleExportBudget)

			r.Post("/upload", uploadHandler.HandleUpload)
			r.Get("/actuals", uploadHandler.HandleGetActuals)
			r.Delete("/actuals/all", uploadHandler.HandleDeleteAllActuals)

			r.Get("/report/variance", reportHandler.HandleGetVarianceReport)
			r.Get("/report/summary", reportHandler.HandleGetSummary)
			r.Get("/report/overspending", reportHandler.HandleGetOverspending)
			r.Get("/report/savings", reportHandler.HandleGetSavings)

			r.Get("/mappings", mappingHandler.HandleListMappings)
			r.Post("/mappings", mappingHandler.HandleAddMapping)
			r.Delete("/mappings/{id}", mappingHandler.HandleDeleteMapping)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
		}
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
