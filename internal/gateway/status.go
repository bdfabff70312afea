package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	UptimeSeconds int64             `json:"uptime_seconds"`
	Metrics       MetricsSnapshot   `json:"metrics"`
	Components    []ComponentStatus `json:"components"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components, _ := g.report(r.Context())
		resp := StatusResponse{
			UptimeSeconds: int64(g.uptime() / time.Second),
			Metrics:       g.metrics.Snapshot(),
			Components:    components,
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
