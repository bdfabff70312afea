// Package app is the shared entry point of the bacbot binary: it loads the
// configuration, builds the modules and runs them until shutdown.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/flemzord/bacbot/internal/config"
	"github.com/flemzord/bacbot/internal/security"
	"github.com/flemzord/bacbot/internal/tracing"
)

const tracingShutdownTimeout = 5 * time.Second

// RunParams configures the main application loop.
type RunParams struct {
	// EnvFile is a dotenv file merged under the process environment.
	// Empty means config.DefaultEnvFile, ignored when missing.
	EnvFile string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer
}

// ConfigOptions returns the load options for an --env-file value. An
// explicit file must exist; the default one is optional.
func ConfigOptions(envFile string) config.Options {
	if envFile == "" {
		return config.Options{EnvFile: config.DefaultEnvFile}
	}
	return config.Options{EnvFile: envFile, RequireEnvFile: true}
}

// LoadConfig loads and validates the configuration.
func LoadConfig(envFile string) (*config.Config, error) {
	cfg, err := config.Load(ConfigOptions(envFile))
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewLogger builds the process logger: a text handler at the configured
// level behind a redacting handler that knows the configured credentials.
func NewLogger(w io.Writer, cfg *config.Config) (*slog.Logger, *security.Redactor, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}

	redactor := security.NewRedactor()
	redactor.AddLiteral(cfg.BotToken)
	redactor.AddLiteral(cfg.APIHash)

	inner := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(security.NewRedactingHandler(inner, redactor)), redactor, nil
}

// Run loads configuration, starts all modules, and blocks until ctx is
// cancelled or a shutdown signal is received.
func Run(ctx context.Context, params RunParams) error {
	cfg, err := LoadConfig(params.EnvFile)
	if err != nil {
		return err
	}

	out := params.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger, _, err := NewLogger(out, cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	logger.Info("bacbot starting",
		"version", params.Version,
		"commit", params.Commit,
		"built", params.Date,
	)
	for _, w := range config.Warnings(cfg) {
		logger.Warn("config: " + w)
	}

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Endpoint:       cfg.OTLPEndpoint,
		ServiceVersion: params.Version,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tracingShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	bot, err := Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("app: building modules: %w", err)
	}
	return bot.App.Run(ctx)
}
