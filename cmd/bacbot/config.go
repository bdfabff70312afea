package main

import (
	"fmt"
	"io"

	"github.com/flemzord/bacbot/internal/config"
	"github.com/flemzord/bacbot/internal/security"
	"github.com/flemzord/bacbot/pkg/app"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configShowCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and list warnings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(envFileFlag(cmd))
			if err != nil {
				return err
			}
			return printCheck(cmd.OutOrStdout(), cfg)
		},
	}
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (secrets redacted)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(app.ConfigOptions(envFileFlag(cmd)))
			if err != nil {
				return err
			}
			return renderConfig(cmd.OutOrStdout(), cfg)
		},
	}
}

func printCheck(w io.Writer, cfg *config.Config) error {
	warnings := config.Warnings(cfg)
	if _, err := fmt.Fprintf(w, "Configuration OK (%d warnings)\n", len(warnings)); err != nil {
		return err
	}
	for _, msg := range warnings {
		if _, err := fmt.Fprintf(w, "  warning: %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}

// renderConfig writes cfg as YAML with credential fields masked.
func renderConfig(w io.Writer, cfg *config.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("config: decoding: %w", err)
	}

	redactor := security.NewRedactor()
	redactor.AddLiteral(cfg.BotToken)
	redactor.AddLiteral(cfg.APIHash)
	redactor.RedactMap(doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}
	return enc.Close()
}
