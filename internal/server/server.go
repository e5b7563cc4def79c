package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/aveekpatra/Domain-AI/internal/config"
	apperrors "github.com/aveekpatra/Domain-AI/internal/errors"
	"github.com/aveekpatra/Domain-AI/internal/observability"
	"github.com/aveekpatra/Domain-AI/internal/server/handlers"
	servermw "github.com/aveekpatra/Domain-AI/internal/server/middleware"
)

// Deps are the request handlers mounted by New.
type Deps struct {
	API       *handlers.API
	Health    *handlers.HealthManager
	Upstreams handlers.Upstreams
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig

	metricsPort int
	adminToken  string
}

// New builds the router. Error details are exposed outside production.
func New(cfg *config.Config, deps Deps) *Server {
	errs := apperrors.Responder{ExposeDetails: !cfg.IsProduction()}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)

	// RequestID → Metrics → Recovery → CORS
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)
	r.Use(servermw.CORS(cfg.Server.AllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		errs.Respond(w, req, apperrors.NewNotFoundError("Not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		errs.Respond(w, req, apperrors.NewMethodNotAllowedError("Method not allowed"))
	})

	s := &Server{
		router:      r,
		cfg:         cfg.Server,
		metricsPort: cfg.Metrics.Port,
		adminToken:  cfg.Server.AdminToken,
	}

	s.registerRoutes(deps)

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  orDefault(s.cfg.ReadTimeout, 30*time.Second),
		WriteTimeout: orDefault(s.cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  orDefault(s.cfg.IdleTimeout, 120*time.Second),
	}

	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Starting HTTP server",
			zap.String("host", s.cfg.Host),
			zap.Int("port", s.cfg.Port),
			zap.String("addr", addr))
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.cfg.Port
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
