package main

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"regexp"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/flemzord/bacbot/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var tokenShape = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// setupVars are the variables asked by `bacbot init`, in prompt order.
var setupVars = []setupVar{
	{Name: "BOT_TOKEN", Title: "Bot token", Description: "Token issued by @BotFather", Secret: true, Check: checkToken},
	{Name: "SOURCE_CHANNEL_ID", Title: "Primary source channel", Description: "Channel posting game results", Check: checkChannelID},
	{Name: "SOURCE_CHANNEL_2_ID", Title: "Secondary source channel", Description: "Used to verify predictions only", Check: checkChannelID},
	{Name: "PREDICTION_CHANNEL_ID", Title: "Prediction channel", Description: "Channel the bot posts to", Check: checkChannelID},
	{Name: "ADMIN_ID", Title: "Admin user ID", Description: "0 disables admin commands", Check: checkInt},
	{Name: "API_ID", Title: "API ID", Description: "From my.telegram.org", Check: checkInt},
	{Name: "API_HASH", Title: "API hash", Description: "From my.telegram.org", Secret: true},
	{Name: "PORT", Title: "HTTP port", Check: checkInt},
}

type setupVar struct {
	Name        string
	Title       string
	Description string
	Secret      bool
	Check       func(string) error
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively write a dotenv configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := envFileFlag(cmd)
			if path == "" {
				path = config.DefaultEnvFile
			}
			force, _ := cmd.Flags().GetBool("force")

			current, err := readEnvFile(path)
			if err != nil {
				return err
			}
			if len(current) > 0 && !force {
				return fmt.Errorf("%s already exists (use --force to edit it)", path)
			}

			values, err := promptSetup(current)
			if err != nil {
				return err
			}
			if err := writeEnvFile(path, current, values); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "edit an existing file")
	return cmd
}

// readEnvFile returns the variables of an existing dotenv file, or an empty
// map when it does not exist.
func readEnvFile(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("init: reading %s: %w", path, err)
	}
	return vars, nil
}

// promptSetup asks for every setup variable, prefilled from current.
func promptSetup(current map[string]string) (map[string]string, error) {
	values := make(map[string]*string, len(setupVars))
	fields := make([]huh.Field, 0, len(setupVars))
	for _, v := range setupVars {
		value := current[v.Name]
		values[v.Name] = &value

		input := huh.NewInput().
			Key(v.Name).
			Title(v.Title).
			Placeholder(v.Name).
			Value(values[v.Name])
		if v.Description != "" {
			input = input.Description(v.Description)
		}
		if v.Secret {
			input = input.EchoMode(huh.EchoModePassword)
		}
		if v.Check != nil {
			input = input.Validate(optional(v.Check))
		}
		fields = append(fields, input)
	}

	form := huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true)
	if err := form.Run(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(values))
	for name, value := range values {
		out[name] = *value
	}
	return out, nil
}

// writeEnvFile merges values over current and writes the result. Empty
// answers leave the variable unset so its built-in default applies.
func writeEnvFile(path string, current, values map[string]string) error {
	merged := maps.Clone(current)
	if merged == nil {
		merged = make(map[string]string, len(values))
	}
	for k, v := range values {
		if v == "" {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	if err := godotenv.Write(merged, path); err != nil {
		return fmt.Errorf("init: writing %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}

// optional accepts an empty answer and otherwise applies check.
func optional(check func(string) error) func(string) error {
	return func(s string) error {
		if s == "" {
			return nil
		}
		return check(s)
	}
}

func checkInt(s string) error {
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return errors.New("must be an integer")
	}
	return nil
}

func checkChannelID(s string) error {
	if _, err := config.ParseChannelID(s); err != nil {
		return errors.New("must be a numeric chat ID")
	}
	return nil
}

func checkToken(s string) error {
	if s == config.PlaceholderBotToken {
		return errors.New("placeholder token")
	}
	if !tokenShape.MatchString(s) {
		return errors.New("expected <bot id>:<secret>")
	}
	return nil
}
