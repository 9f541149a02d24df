// Package server assembles the chi router, middleware chain, and HTTP
// lifecycle for the API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/prolifel/ceker/internal/server/handlers"
	servermw "github.com/prolifel/ceker/internal/server/middleware"
)

// Server is the HTTP front to the classification pipeline.
type Server struct {
	router *chi.Mux
	server *http.Server
	logger *zap.Logger
	host   string
	port   int
}

// New builds a server around the API handlers. metricsEnabled gates the
// /metrics endpoint and the per-request metric collection.
func New(host string, port int, api *handlers.API, health handlers.HealthCheckers, logger *zap.Logger, metricsEnabled bool) *Server {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(servermw.RequestID)
	if metricsEnabled {
		r.Use(servermw.RequestMetrics(logger))
	}
	r.Use(servermw.Recovery(logger))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeErrorJSON(w, http.StatusNotFound, "The requested resource was not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeErrorJSON(w, http.StatusMethodNotAllowed, "The requested method is not allowed for this resource")
	})

	s := &Server{
		router: r,
		logger: logger,
		host:   host,
		port:   port,
	}
	s.registerRoutes(api, health, metricsEnabled)

	return s
}

// Start runs the HTTP server until it fails or is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
		// Check streams can outlive a scanner poll cycle.
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if s.logger != nil {
		s.logger.Info("starting http server", zap.String("addr", addr))
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("shutting down http server")
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
