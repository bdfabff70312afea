// Package gateway serves the bot's HTTP surface: the keep-alive root,
// health and status reports, and Prometheus metrics.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/flemzord/bacbot/internal/core"
)

// ModuleID is the module identifier of the HTTP gateway.
const ModuleID core.ModuleID = "gateway.http"

// Gateway is the HTTP gateway module. It is a leaf module: it only reads
// from the components it reports on.
type Gateway struct {
	config   Config
	logger   *slog.Logger
	metrics  *Metrics
	checkers []HealthChecker

	mu        sync.Mutex
	server    *http.Server
	listener  net.Listener
	startedAt time.Time
}

// New creates a gateway that reports metrics and the health of checkers.
// A nil metrics disables /metrics and /status counters.
func New(metrics *Metrics, checkers ...HealthChecker) *Gateway {
	return &Gateway{metrics: metrics, checkers: checkers}
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: ModuleID}
}

// Provision implements core.Provisioner. The gateway binds every interface
// on the configured PORT.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.logger = ctx.Logger
	if ctx.Config != nil {
		g.config.Bind = bindAddr(ctx.Config.Port)
	}
	g.config.defaults()
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return fmt.Errorf("gateway: invalid bind address %q: %w", g.config.Bind, err)
	}
	return nil
}

// Start implements core.Starter. It binds synchronously so a busy port fails
// startup, then serves in the background.
func (g *Gateway) Start() error {
	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen failed: %w", err)
	}

	server := &http.Server{
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	g.mu.Lock()
	g.server = server
	g.listener = ln
	g.startedAt = time.Now()
	g.mu.Unlock()

	go func() {
		g.logger.Info("gateway listening", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, or nil before Start.
func (g *Gateway) Addr() net.Addr {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listener == nil {
		return nil
	}
	return g.listener.Addr()
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	g.mu.Lock()
	server := g.server
	g.server = nil
	g.mu.Unlock()

	if server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return server.Shutdown(shutdownCtx)
}

func (g *Gateway) uptime() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.startedAt.IsZero() {
		return 0
	}
	return time.Since(g.startedAt).Truncate(time.Second)
}
