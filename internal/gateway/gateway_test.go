package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flemzord/bacbot/internal/config"
	"github.com/flemzord/bacbot/internal/core"
)

type fakeChecker struct {
	status ComponentStatus
}

func (f fakeChecker) Health(context.Context) ComponentStatus { return f.status }

func up(name string) HealthChecker {
	return fakeChecker{ComponentStatus{Name: name, Available: true}}
}

func down(name string) HealthChecker {
	return fakeChecker{ComponentStatus{Name: name, Detail: "polling paused"}}
}

func serve(t *testing.T, g *Gateway, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	g.buildRouter().ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func TestGateway_ModuleInfo(t *testing.T) {
	t.Parallel()
	if id := New(nil).ModuleInfo().ID; id != "gateway.http" {
		t.Errorf("ID = %q, want %q", id, "gateway.http")
	}
}

func TestGateway_ProvisionBindsPort(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(config.Options{Environment: map[string]string{"PORT": "8081"}})
	if err != nil {
		t.Fatal(err)
	}
	g := New(nil)
	if err := g.Provision(core.NewAppContext(slog.New(slog.DiscardHandler), cfg)); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if g.config.Bind != "0.0.0.0:8081" {
		t.Errorf("Bind = %q, want 0.0.0.0:8081", g.config.Bind)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestGateway_Root(t *testing.T) {
	t.Parallel()

	rr := serve(t, New(nil), http.MethodGet, "/")
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if rr.Body.String() != "Bot is running" {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestHealth_AllHealthy(t *testing.T) {
	t.Parallel()

	rr := serve(t, New(nil, up("channel.telegram"), up("store.sqlite")), http.MethodGet, "/health")
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want %q", resp.Status, "ok")
	}
	if len(resp.Components) != 2 {
		t.Errorf("components = %d, want 2", len(resp.Components))
	}
}

func TestHealth_Degraded(t *testing.T) {
	t.Parallel()

	rr := serve(t, New(nil, up("store.sqlite"), down("channel.telegram")), http.MethodGet, "/health")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("status = %q, want %q", resp.Status, "degraded")
	}
	if resp.Components[1].Detail != "polling paused" {
		t.Errorf("detail = %q", resp.Components[1].Detail)
	}
}

func TestHealth_NoCheckers(t *testing.T) {
	t.Parallel()

	rr := serve(t, New(nil), http.MethodGet, "/health")
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.RecordPrediction(OutcomeWon)
	rr := serve(t, New(m, up("channel.telegram")), http.MethodGet, "/status")

	var resp StatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Metrics.Wins != 1 {
		t.Errorf("wins = %d, want 1", resp.Metrics.Wins)
	}
	if len(resp.Components) != 1 {
		t.Errorf("components = %d, want 1", len(resp.Components))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.RecordUpdate(KindGame, 0)
	rr := serve(t, New(m), http.MethodGet, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `bacbot_updates_total{kind="game"} 1`) {
		t.Errorf("metrics output missing counter:\n%s", rr.Body.String())
	}

	if rr := serve(t, New(nil), http.MethodGet, "/metrics"); rr.Code != http.StatusNotFound {
		t.Errorf("without metrics /metrics = %d, want 404", rr.Code)
	}
}

func TestGateway_StartStop(t *testing.T) {
	t.Parallel()

	g := New(nil, up("channel.telegram"))
	g.logger = slog.New(slog.DiscardHandler)
	g.config = Config{Bind: "127.0.0.1:0"}
	g.config.defaults()

	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	addr := g.Addr()
	if addr == nil {
		t.Fatal("Addr() = nil after Start")
	}

	resp, err := http.Get("http://" + addr.String() + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "Bot is running" {
		t.Errorf("body = %q", body)
	}

	if err := g.Stop(t.Context()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := g.Stop(t.Context()); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}
