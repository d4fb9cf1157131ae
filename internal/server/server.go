// Package server provides the HTTP server and routing for Halcyon.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/halcyon-energy/halcyon/internal/config"
	"github.com/halcyon-energy/halcyon/internal/database"
	"github.com/halcyon-energy/halcyon/internal/modules/analysis"
	"github.com/halcyon-energy/halcyon/internal/modules/finance"
	financehandlers "github.com/halcyon-energy/halcyon/internal/modules/finance/handlers"
	"github.com/halcyon-energy/halcyon/internal/modules/portfolio"
	portfoliohandlers "github.com/halcyon-energy/halcyon/internal/modules/portfolio/handlers"
	"github.com/halcyon-energy/halcyon/internal/modules/pricing"
	pricinghandlers "github.com/halcyon-energy/halcyon/internal/modules/pricing/handlers"
	"github.com/halcyon-energy/halcyon/internal/modules/revenue"
	"github.com/halcyon-energy/halcyon/internal/modules/snapshots"
)

// Config holds server configuration.
type Config struct {
	Log         zerolog.Logger
	Config      *config.Config
	PortfolioDB *database.DB
	CacheDB     *database.DB
}

// Server represents the HTTP server.
type Server struct {
	router      *chi.Mux
	server      *http.Server
	log         zerolog.Logger
	cfg         *config.Config
	portfolioDB *database.DB
	cacheDB     *database.DB
}

// New creates a new HTTP server with all engine services wired.
func New(cfg Config) (*Server, error) {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log,
		cfg:         cfg.Config,
		portfolioDB: cfg.PortfolioDB,
		cacheDB:     cfg.CacheDB,
	}

	s.setupMiddleware(cfg.Config.DevMode)
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures middleware.
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes wires repositories, engine services and HTTP handlers.
func (s *Server) setupRoutes() error {
	priceRepo := pricing.NewRepository(s.portfolioDB.Conn(), s.log)
	if err := priceRepo.InitSchema(); err != nil {
		return err
	}
	portfolioRepo := portfolio.NewRepository(s.portfolioDB.Conn(), s.log)
	if err := portfolioRepo.InitSchema(); err != nil {
		return err
	}
	snapshotRepo := snapshots.NewRepository(s.cacheDB.Conn(), s.log)
	if err := snapshotRepo.InitSchema(); err != nil {
		return err
	}

	pricingService := pricing.NewService(priceRepo, s.log)
	calculator := revenue.NewCalculator(pricingService, s.log)
	portfolioService := portfolio.NewService(calculator, s.log)
	financeService := finance.NewService(s.log)
	analysisService := analysis.NewService(s.log)

	portfolioHandler := portfoliohandlers.NewHandler(
		portfolioService, portfolioRepo, snapshotRepo, s.cfg.Constants, s.log)
	pricingHandler := pricinghandlers.NewHandler(priceRepo, pricingService, s.cfg.Constants, s.log)
	financeHandler := financehandlers.NewHandler(
		financeService, analysisService, portfolioService, s.cfg.Constants, s.log)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		portfolioHandler.RegisterRoutes(r)
		pricingHandler.RegisterRoutes(r)
		financeHandler.RegisterRoutes(r)
	})

	return nil
}

// handleHealth reports process and database health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	body := `{"status":"ok"}`
	if err := s.portfolioDB.HealthCheck(ctx); err != nil {
		s.log.Error().Err(err).Msg("portfolio database unhealthy")
		status = http.StatusServiceUnavailable
		body = `{"status":"degraded"}`
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
