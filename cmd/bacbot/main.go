// Package main is the entry point for the bacbot CLI.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/flemzord/bacbot/pkg/app"
	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bacbot",
		Short:         "Telegram bot posting baccarat suit predictions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("env-file", "e", "", "dotenv file to load (default .env when present)")
	root.AddCommand(versionCmd(), startCmd(), configCmd(), initCmd(), serviceCmd())
	return root
}

func envFileFlag(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("env-file")
	return path
}

func runParams(cmd *cobra.Command) app.RunParams {
	return app.RunParams{
		EnvFile: envFileFlag(cmd),
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bacbot %s (commit: %s, built: %s, %s)\n", version, commit, date, runtime.Version())
		},
	}
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the bot and its HTTP endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), runParams(cmd))
		},
	}
}
