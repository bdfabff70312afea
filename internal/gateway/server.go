package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// keepAliveBody is served on GET / for uptime pingers.
const keepAliveBody = "Bot is running"

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(keepAliveBody))
	})
	r.Head("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/health", g.handleHealth())
	r.Get("/status", g.handleStatus())

	if g.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(g.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	return r
}
