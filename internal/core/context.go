// Package core provides the module lifecycle shared by every bacbot component.
package core

import (
	"log/slog"

	"github.com/flemzord/bacbot/internal/config"
)

// ModuleID identifies a module, namespaced by dots (e.g. "channel.telegram").
type ModuleID string

// ModuleInfo describes a module.
type ModuleInfo struct {
	ID ModuleID
}

// Module is the minimal interface every component managed by App implements.
// Lifecycle hooks are optional and discovered through the interfaces in
// lifecycle.go.
type Module interface {
	ModuleInfo() ModuleInfo
}

// AppContext carries shared resources available to modules during
// provisioning.
type AppContext struct {
	// Logger for the current module scope.
	Logger *slog.Logger

	// Config is the process-wide configuration, loaded once at startup.
	Config *config.Config

	parentLogger *slog.Logger
}

// NewAppContext creates a new AppContext with the given base logger and
// configuration.
func NewAppContext(logger *slog.Logger, cfg *config.Config) *AppContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppContext{
		Logger:       logger,
		Config:       cfg,
		parentLogger: logger,
	}
}

// ForModule returns a new AppContext scoped to the given module ID,
// with a child logger that includes the module ID.
func (ctx *AppContext) ForModule(id ModuleID) *AppContext {
	return &AppContext{
		Logger:       ctx.parentLogger.With("module", string(id)),
		Config:       ctx.Config,
		parentLogger: ctx.parentLogger,
	}
}
