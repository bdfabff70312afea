package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flemzord/bacbot/pkg/app"
	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

const serviceName = "bacbot"

// program adapts app.Run to the service manager's Start/Stop callbacks.
type program struct {
	params app.RunParams
	cancel context.CancelFunc
	done   chan error
}

// Start implements service.Interface. It must not block.
func (p *program) Start(_ service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)

	go func() {
		err := app.Run(ctx, p.params)
		p.done <- err
		if err != nil && ctx.Err() == nil {
			fmt.Fprintln(os.Stderr, "bacbot:", err)
			os.Exit(1)
		}
	}()
	return nil
}

// Stop implements service.Interface.
func (p *program) Stop(_ service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	return <-p.done
}

// serviceConfig describes the installed unit. The service re-invokes this
// binary with `service run`, pinned to the current directory and env file.
func serviceConfig(envFile string) (*service.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	args := []string{"service", "run"}
	if envFile != "" {
		abs, err := filepath.Abs(envFile)
		if err != nil {
			return nil, err
		}
		args = append(args, "--env-file", abs)
	}

	return &service.Config{
		Name:             serviceName,
		DisplayName:      "Bacbot",
		Description:      "Telegram baccarat prediction bot",
		Arguments:        args,
		WorkingDirectory: wd,
		Option: service.KeyValue{
			"Restart":     "on-failure",
			"LogOutput":   true,
			"UserService": false,
		},
	}, nil
}

func newService(cmd *cobra.Command) (service.Service, error) {
	svcCfg, err := serviceConfig(envFileFlag(cmd))
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	svc, err := service.New(&program{params: runParams(cmd)}, svcCfg)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return svc, nil
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage bacbot as a system service",
	}

	for _, action := range service.ControlAction {
		cmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: fmt.Sprintf("%s the system service", action),
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := newService(cmd)
				if err != nil {
					return err
				}
				if err := service.Control(svc, action); err != nil {
					return fmt.Errorf("service %s: %w", action, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "service %s: ok\n", action)
				return nil
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:    "run",
		Short:  "Run under the service manager",
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			return svc.Run()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the system service status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			status, err := svc.Status()
			if err != nil && !errors.Is(err, service.ErrNotInstalled) {
				return fmt.Errorf("service status: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), statusText(status, err))
			return nil
		},
	})
	return cmd
}

func statusText(status service.Status, err error) string {
	if errors.Is(err, service.ErrNotInstalled) {
		return "not installed"
	}
	switch status {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
