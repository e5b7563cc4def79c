package server

import (
	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aveekpatra/Domain-AI/internal/observability"
	"github.com/aveekpatra/Domain-AI/internal/server/handlers"
	servermw "github.com/aveekpatra/Domain-AI/internal/server/middleware"
)

func (s *Server) registerRoutes(deps Deps) {
	if hm := deps.Health; hm != nil {
		s.router.Get("/health", hm.HealthHandler)
		s.router.Get("/health/live", hm.LivenessHandler)
		s.router.Get("/health/ready", hm.ReadinessHandler)
		s.router.Get("/health/startup", hm.StartupHandler)
	}

	s.router.Get("/version", handlers.VersionHandler(deps.Upstreams))
	s.router.Get("/metrics", MetricsHandler(s.metricsPort))

	if api := deps.API; api != nil {
		guard := servermw.OriginGuard(s.cfg.AllowedOrigin)
		mount := func(r chi.Router) {
			r.Use(guard)
			r.Post("/domains/generate", api.GenerateDomains)
			r.Post("/domains/validate", api.ValidateDomain)
			r.Post("/prompts/improve", api.ImprovePrompt)
		}
		s.router.Route("/api", func(r chi.Router) {
			mount(r)
			if s.cfg.ExposeUsage {
				r.Get("/ai/usage", api.AIUsage)
			}
		})
		s.router.Group(mount)
	}

	s.registerAdminEndpoint()
}

// registerAdminEndpoint mounts POST /admin/signal when an admin token is set.
func (s *Server) registerAdminEndpoint() {
	logger := observability.ServerLogger

	if s.adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (server.admin_token not set)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: s.adminToken,
		RateLimit: 10,
		RateBurst: 5,
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("rate_limit", "10/min, burst 5"))
	}
}
