package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prolifel/ceker/internal/server/handlers"
)

func (s *Server) registerRoutes(api *handlers.API, health handlers.HealthCheckers, metricsEnabled bool) {
	s.router.Get("/health", api.Health(health))
	s.router.Get("/health/live", api.Liveness)
	s.router.Get("/version", handlers.VersionHandler)

	if metricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/check-website", api.CheckWebsite)
		r.Post("/check-website-sync", api.CheckWebsiteSync)

		r.Get("/screenshots/{filename}", api.Screenshot)

		r.Get("/domains", api.ListDomains)
		r.Post("/domains", api.CreateDomain)

		r.Get("/blacklists", api.ListBlacklists)
		r.Post("/blacklists", api.CreateBlacklists)

		r.Get("/tlds", api.ListTLDs)
		r.Post("/tlds", api.CreateTLDs)
	})
}
