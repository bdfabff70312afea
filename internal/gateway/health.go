package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const healthCheckTimeout = 5 * time.Second

// ComponentStatus is the health of one component.
type ComponentStatus struct {
	Name      string    `json:"name"`
	Available bool      `json:"available"`
	Detail    string    `json:"detail,omitempty"`
	LastSeen  time.Time `json:"last_seen,omitzero"`
}

// HealthChecker is implemented by components that report their health.
type HealthChecker interface {
	Health(ctx context.Context) ComponentStatus
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status     string            `json:"status"` // "ok" or "degraded"
	Components []ComponentStatus `json:"components"`
}

// report collects the status of every checker.
func (g *Gateway) report(ctx context.Context) ([]ComponentStatus, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	healthy := true
	out := make([]ComponentStatus, 0, len(g.checkers))
	for _, c := range g.checkers {
		s := c.Health(ctx)
		if !s.Available {
			healthy = false
		}
		out = append(out, s)
	}
	return out, healthy
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 if every component is available, 503 otherwise.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components, healthy := g.report(r.Context())
		resp := HealthResponse{Status: "ok", Components: components}
		if !healthy {
			resp.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
