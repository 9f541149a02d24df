package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// HealthCheckers holds the dependencies the health endpoint inspects.
type HealthCheckers map[string]HealthChecker

// HealthResponse is the aggregate health payload.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health runs the registered dependency checks and reports aggregate
// status. Any failing dependency turns the response into a 503.
func (a *API) Health(checkers HealthCheckers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "healthy"
		checks := make(map[string]string, len(checkers))
		for name, checker := range checkers {
			if err := checker.CheckHealth(ctx); err != nil {
				checks[name] = "unhealthy"
				status = "unhealthy"
			} else {
				checks[name] = "healthy"
			}
		}

		code := http.StatusOK
		if status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}

		respondJSON(w, code, HealthResponse{
			Status:    status,
			Version:   a.Version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    checks,
		})
	}
}

// Liveness answers as long as the process serves requests.
func (a *API) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
