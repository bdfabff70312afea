// Package sqlite persists predictions in a SQLite database using
// modernc.org/sqlite (pure Go, no CGO) in WAL mode.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/flemzord/bacbot/internal/core"
	"github.com/flemzord/bacbot/internal/gateway"
	"github.com/flemzord/bacbot/internal/predict"
)

// ModuleID is the identifier of the SQLite store module.
const ModuleID core.ModuleID = "store.sqlite"

const openTimeout = 10 * time.Second

// Compile-time interface guards.
var (
	_ core.Provisioner      = (*Module)(nil)
	_ core.Validator        = (*Module)(nil)
	_ core.Stopper          = (*Module)(nil)
	_ gateway.HealthChecker = (*Module)(nil)
)

// Module owns the database for the lifetime of the app.
type Module struct {
	config Config
	logger *slog.Logger
	store  *Store
}

// New creates a Module. An empty path places the database in DATA_DIR.
func New(path string) *Module {
	return &Module{config: Config{Path: path}}
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: ModuleID}
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	if m.config.Path == "" && ctx.Config != nil {
		m.config.Path = filepath.Join(ctx.Config.DataDir, defaultDBFile)
	}
	if err := m.config.validate(); err != nil {
		return err
	}

	openCtx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	db, err := open(openCtx, m.config)
	if err != nil {
		return err
	}
	m.store = &Store{db: db}

	m.logger.Info("sqlite store provisioned",
		"path", m.config.Path,
		"wal", m.config.walEnabled(),
	)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if m.store == nil {
		return fmt.Errorf("sqlite: store not provisioned")
	}

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()
	if err := m.store.Ping(ctx); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return nil
}

// Stop implements core.Stopper.
func (m *Module) Stop(_ context.Context) error {
	if m.store == nil {
		return nil
	}
	m.logger.Info("sqlite store stopping")
	return m.store.Close()
}

// Store returns the prediction store. It is nil before Provision.
func (m *Module) Store() predict.Store {
	if m.store == nil {
		return nil
	}
	return m.store
}

// Path returns the database file path.
func (m *Module) Path() string {
	return m.config.Path
}

// Health implements gateway.HealthChecker.
func (m *Module) Health(ctx context.Context) gateway.ComponentStatus {
	status := gateway.ComponentStatus{Name: string(ModuleID), Available: true}
	if m.store == nil {
		status.Available = false
		status.Detail = "not provisioned"
		return status
	}
	if err := m.store.Ping(ctx); err != nil {
		status.Available = false
		status.Detail = err.Error()
	}
	return status
}
