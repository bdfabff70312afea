package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/robfig/cron/v3"
)

// Validate checks the structural validity of a Config and returns every
// problem found, joined.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: PORT must be 1-65535, got %d", cfg.Port))
	}

	if cfg.SourceChannelID == 0 {
		errs = append(errs, errors.New("config: SOURCE_CHANNEL_ID is required"))
	}
	if cfg.PredictionChannelID == 0 {
		errs = append(errs, errors.New("config: PREDICTION_CHANNEL_ID is required"))
	}
	for _, src := range cfg.SourceChannels() {
		if src != 0 && src == cfg.PredictionChannelID.Int64() {
			errs = append(errs, fmt.Errorf("config: PREDICTION_CHANNEL_ID %d is also a source channel", src))
		}
	}

	if cfg.PredictionOffset < 1 || cfg.PredictionOffset > 10 {
		errs = append(errs, fmt.Errorf("config: PREDICTION_OFFSET must be 1-10, got %d", cfg.PredictionOffset))
	}
	if cfg.PredictionAttempts < 1 || cfg.PredictionAttempts > 5 {
		errs = append(errs, fmt.Errorf("config: PREDICTION_ATTEMPTS must be 1-5, got %d", cfg.PredictionAttempts))
	}
	if cfg.PollingTimeout < 0 || cfg.PollingTimeout > 50 {
		errs = append(errs, fmt.Errorf("config: POLLING_TIMEOUT must be 0-50, got %d", cfg.PollingTimeout))
	}
	if cfg.PostsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("config: POSTS_PER_MINUTE must be non-negative, got %d", cfg.PostsPerMinute))
	}
	if cfg.PendingTTL <= 0 {
		errs = append(errs, fmt.Errorf("config: PENDING_TTL must be positive, got %s", cfg.PendingTTL))
	}
	if cfg.Retention <= 0 {
		errs = append(errs, fmt.Errorf("config: RETENTION must be positive, got %s", cfg.Retention))
	}

	if _, err := cfg.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if _, err := cron.ParseStandard(cfg.ReportSchedule); err != nil {
		errs = append(errs, fmt.Errorf("config: REPORT_SCHEDULE: %w", err))
	}

	u, err := url.Parse(cfg.TelegramAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("config: TELEGRAM_API_URL must be a valid http/https URL, got %q", cfg.TelegramAPIURL))
	}

	return errors.Join(errs...)
}

// Warnings lists configuration-hygiene issues that do not prevent loading:
// placeholder credentials and channel IDs left at their built-in defaults.
func Warnings(cfg *Config) []string {
	var out []string
	if cfg.BotToken == PlaceholderBotToken {
		out = append(out, "BOT_TOKEN is the placeholder default; the bot cannot authenticate")
	}
	if cfg.APIHash == PlaceholderAPIHash {
		out = append(out, "API_HASH is the placeholder default")
	}
	for _, name := range []string{"SOURCE_CHANNEL_ID", "SOURCE_CHANNEL_2_ID", "PREDICTION_CHANNEL_ID"} {
		if cfg.Source(name) == SourceDefault {
			out = append(out, name+" is using its built-in default")
		}
	}
	if cfg.AdminID == 0 {
		out = append(out, "ADMIN_ID is 0; admin commands and reports are disabled")
	}
	return out
}
