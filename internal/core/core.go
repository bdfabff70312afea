package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 30 * time.Second

// App manages the lifecycle of a set of modules.
type App struct {
	ctx     *AppContext
	modules []moduleInstance
	logger  *slog.Logger
}

type moduleInstance struct {
	id      ModuleID
	module  Module
	started bool
}

// NewApp creates a new App with the given context.
func NewApp(ctx *AppContext) *App {
	return &App{
		ctx:    ctx,
		logger: ctx.Logger.With("component", "core"),
	}
}

// Add provisions and validates each module in order and appends it to the
// start sequence. If any step fails, modules already added are stopped.
func (a *App) Add(mods ...Module) error {
	for _, mod := range mods {
		info := mod.ModuleInfo()
		if info.ID == "" {
			a.cleanup()
			return fmt.Errorf("core: module %T has an empty ID", mod)
		}
		if err := a.load(info.ID, mod); err != nil {
			a.cleanup()
			return err
		}
		a.modules = append(a.modules, moduleInstance{id: info.ID, module: mod})
		a.logger.Info("module loaded", "module", string(info.ID))
	}
	return nil
}

// load runs the provisioning half of the lifecycle:
//
//	Provision() → Validate()
func (a *App) load(id ModuleID, mod Module) error {
	for _, mi := range a.modules {
		if mi.id == id {
			return fmt.Errorf("core: module already added: %s", id)
		}
	}
	if p, ok := mod.(Provisioner); ok {
		if err := p.Provision(a.ctx.ForModule(id)); err != nil {
			return fmt.Errorf("provisioning module %s: %w", id, err)
		}
	}
	if v, ok := mod.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validating module %s: %w", id, err)
		}
	}
	return nil
}

// Modules returns the IDs of the added modules in start order.
func (a *App) Modules() []ModuleID {
	ids := make([]ModuleID, len(a.modules))
	for i, mi := range a.modules {
		ids[i] = mi.id
	}
	return ids
}

// Start starts all loaded modules that implement Starter, in order.
// If any Start() fails, already-started modules are stopped in reverse order.
func (a *App) Start() error {
	for i := range a.modules {
		mi := &a.modules[i]
		s, ok := mi.module.(Starter)
		if !ok {
			mi.started = true
			continue
		}
		a.logger.Info("starting module", "module", string(mi.id))
		if err := s.Start(); err != nil {
			a.logger.Error("module start failed", "module", string(mi.id), "error", err)
			a.stopModules(i - 1)
			return fmt.Errorf("starting module %s: %w", mi.id, err)
		}
		mi.started = true
	}
	a.logger.Info("all modules started")
	return nil
}

// Stop stops all started modules in reverse order with a timeout.
func (a *App) Stop() {
	a.stopModules(len(a.modules) - 1)
}

func (a *App) stopModules(fromIndex int) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := fromIndex; i >= 0; i-- {
		mi := &a.modules[i]
		if !mi.started {
			continue
		}
		if s, ok := mi.module.(Stopper); ok {
			a.logger.Info("stopping module", "module", string(mi.id))
			if err := s.Stop(ctx); err != nil {
				a.logger.Error("module stop error", "module", string(mi.id), "error", err)
			}
		}
		mi.started = false
	}
}

// Abort releases every added module without starting the app. It is used
// when assembly fails after some modules were added.
func (a *App) Abort() {
	a.cleanup()
}

// cleanup releases modules that were provisioned but never started.
func (a *App) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(a.modules) - 1; i >= 0; i-- {
		mi := &a.modules[i]
		if s, ok := mi.module.(Stopper); ok {
			_ = s.Stop(ctx)
		}
	}
	a.modules = nil
}

// Run starts all modules and blocks until ctx is cancelled or a shutdown
// signal is received.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("shutdown requested", "reason", context.Cause(ctx))
	}

	a.Stop()
	a.logger.Info("shutdown complete")
	return nil
}
