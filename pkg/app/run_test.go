package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/flemzord/bacbot/internal/config"
	"github.com/flemzord/bacbot/internal/core"
	"github.com/flemzord/bacbot/internal/cron"
	"github.com/flemzord/bacbot/internal/gateway"
	"github.com/flemzord/bacbot/internal/relay"
	"github.com/flemzord/bacbot/modules/channel/telegram"
	"github.com/flemzord/bacbot/modules/store/sqlite"
)

const testToken = "123456789:AAbbCCddEEffGGhhIIjjKKllMMnnOOppQQr"

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bacbot.env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	base := map[string]string{
		"BOT_TOKEN": testToken,
		"DATA_DIR":  t.TempDir(),
		"PORT":      "5000",
	}
	for k, v := range env {
		base[k] = v
	}
	cfg, err := config.Load(config.Options{Environment: base})
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func TestLoadConfig_EnvFile(t *testing.T) {
	t.Setenv("SOURCE_CHANNEL_ID", "")
	t.Setenv("PORT", "")
	path := writeEnvFile(t, "SOURCE_CHANNEL_ID=1002682552255\nPORT=8080\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.SourceChannelID.Int64(); got != -1002682552255 {
		t.Errorf("SourceChannelID = %d, want -1002682552255", got)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	if err == nil {
		t.Fatal("expected error for a missing explicit env file")
	}
}

func TestLoadConfig_ParseError(t *testing.T) {
	t.Setenv("ADMIN_ID", "")
	path := writeEnvFile(t, "ADMIN_ID=admin\n")

	_, err := LoadConfig(path)
	var cfgErr *config.Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *config.Error", err)
	}
	if cfgErr.Var != "ADMIN_ID" {
		t.Errorf("Var = %q, want ADMIN_ID", cfgErr.Var)
	}
}

func TestLoadConfig_ValidationError(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeEnvFile(t, "PORT=70000\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error for an out-of-range port")
	}
}

func TestNewLogger_RedactsCredentials(t *testing.T) {
	cfg := testConfig(t, map[string]string{"API_HASH": "0123456789abcdef0123456789abcdef"})

	var buf bytes.Buffer
	logger, redactor, err := NewLogger(&buf, cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if redactor == nil {
		t.Fatal("redactor is nil")
	}

	logger.Info("connecting", "token", cfg.BotToken, "url", "https://api.telegram.org/bot"+cfg.BotToken+"/getMe", "hash", cfg.APIHash)

	out := buf.String()
	if strings.Contains(out, cfg.BotToken) {
		t.Errorf("log leaks bot token: %s", out)
	}
	if strings.Contains(out, cfg.APIHash) {
		t.Errorf("log leaks API hash: %s", out)
	}
	if !strings.Contains(out, "connecting") {
		t.Errorf("log lost the message: %s", out)
	}
}

func TestNewLogger_Level(t *testing.T) {
	cfg := testConfig(t, map[string]string{"LOG_LEVEL": "warn"})

	var buf bytes.Buffer
	logger, _, err := NewLogger(&buf, cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line logged at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn line missing")
	}
}

func TestBuild_ModuleOrder(t *testing.T) {
	cfg := testConfig(t, map[string]string{"ADMIN_ID": "42"})
	logger, _, err := NewLogger(&bytes.Buffer{}, cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	bot, err := Build(cfg, logger)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(bot.App.Abort)

	want := []core.ModuleID{sqlite.ModuleID, relay.ModuleID, telegram.ModuleID, cron.ModuleID, gateway.ModuleID}
	if got := bot.App.Modules(); !slices.Equal(got, want) {
		t.Errorf("modules = %v, want %v", got, want)
	}

	jobs := bot.Scheduler.Jobs()
	for _, name := range []string{"expire_pending", "prune_history", "daily_report"} {
		if !slices.Contains(jobs, name) {
			t.Errorf("job %q not registered, have %v", name, jobs)
		}
	}

	if _, err := os.Stat(filepath.Join(cfg.DataDir, "predictions.db")); err != nil {
		t.Errorf("database file: %v", err)
	}
	if bot.Engine.Config().Offset != cfg.PredictionOffset {
		t.Errorf("engine offset = %d, want %d", bot.Engine.Config().Offset, cfg.PredictionOffset)
	}
}

func TestBuild_MemoryStoreWithoutAdmin(t *testing.T) {
	cfg := testConfig(t, map[string]string{"DATA_DIR": config.MemoryDataDir})
	logger, _, err := NewLogger(&bytes.Buffer{}, cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	bot, err := Build(cfg, logger)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(bot.App.Abort)

	if slices.Contains(bot.App.Modules(), sqlite.ModuleID) {
		t.Error("sqlite module added for an in-memory data dir")
	}
	if slices.Contains(bot.Scheduler.Jobs(), "daily_report") {
		t.Error("daily report registered without an admin")
	}
}

func TestBuild_PlaceholderTokenRejected(t *testing.T) {
	cfg := testConfig(t, map[string]string{"BOT_TOKEN": config.PlaceholderBotToken})
	logger, _, err := NewLogger(&bytes.Buffer{}, cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	if _, err := Build(cfg, logger); err == nil {
		t.Fatal("expected Build to reject the placeholder token")
	}
}
