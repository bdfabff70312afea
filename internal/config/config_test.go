package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{Environment: map[string]string{}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SourceChannelID != -1002682552255 {
		t.Errorf("SourceChannelID = %d, want -1002682552255", cfg.SourceChannelID)
	}
	if cfg.SecondSourceChannelID != -1002674389383 {
		t.Errorf("SecondSourceChannelID = %d, want -1002674389383", cfg.SecondSourceChannelID)
	}
	if cfg.PredictionChannelID != -1003329818758 {
		t.Errorf("PredictionChannelID = %d, want -1003329818758", cfg.PredictionChannelID)
	}
	if cfg.AdminID != 0 {
		t.Errorf("AdminID = %d, want 0", cfg.AdminID)
	}
	if cfg.APIID != 29177661 {
		t.Errorf("APIID = %d, want 29177661", cfg.APIID)
	}
	if cfg.APIHash != PlaceholderAPIHash {
		t.Errorf("APIHash = %q, want placeholder", cfg.APIHash)
	}
	if cfg.BotToken != PlaceholderBotToken {
		t.Errorf("BotToken = %q, want placeholder", cfg.BotToken)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Port)
	}
	if cfg.PendingTTL != 2*time.Hour {
		t.Errorf("PendingTTL = %s, want 2h", cfg.PendingTTL)
	}
	if cfg.Source("SOURCE_CHANNEL_ID") != SourceDefault {
		t.Errorf("Source(SOURCE_CHANNEL_ID) = %s, want default", cfg.Source("SOURCE_CHANNEL_ID"))
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_NormalizesChannelIDs(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  ChannelID
	}{
		{"unsigned 13 digits", "1002682552255", -1002682552255},
		{"already negative", "-1002682552255", -1002682552255},
		{"below threshold", "123456789", 123456789},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(Options{Environment: map[string]string{
				"SOURCE_CHANNEL_ID": tt.value,
			}})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.SourceChannelID != tt.want {
				t.Errorf("SourceChannelID = %d, want %d", cfg.SourceChannelID, tt.want)
			}
			if cfg.Source("SOURCE_CHANNEL_ID") != SourceEnv {
				t.Errorf("Source = %s, want env", cfg.Source("SOURCE_CHANNEL_ID"))
			}
		})
	}
}

func TestLoad_PlainIntegersAreNotNormalized(t *testing.T) {
	cfg, err := Load(Options{Environment: map[string]string{
		"ADMIN_ID": "1234567890",
		"API_ID":   "12345",
		"PORT":     "8080",
	}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AdminID != 1234567890 {
		t.Errorf("AdminID = %d, want 1234567890 (no sign change)", cfg.AdminID)
	}
	if cfg.APIID != 12345 {
		t.Errorf("APIID = %d, want 12345", cfg.APIID)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
}

func TestLoad_EmptyValueUsesDefault(t *testing.T) {
	cfg, err := Load(Options{Environment: map[string]string{
		"PREDICTION_CHANNEL_ID": "",
		"PORT":                  "",
	}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PredictionChannelID != -1003329818758 {
		t.Errorf("PredictionChannelID = %d, want default", cfg.PredictionChannelID)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Port)
	}
	if cfg.Source("PORT") != SourceDefault {
		t.Errorf("Source(PORT) = %s, want default", cfg.Source("PORT"))
	}
}

func TestLoad_MalformedChannelID(t *testing.T) {
	_, err := Load(Options{Environment: map[string]string{
		"SOURCE_CHANNEL_2_ID": "not-a-number",
	}})
	if err == nil {
		t.Fatal("expected error for malformed channel ID")
	}

	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error %v is not a *config.Error", err)
	}
	if cfgErr.Var != "SOURCE_CHANNEL_2_ID" {
		t.Errorf("Var = %q, want SOURCE_CHANNEL_2_ID", cfgErr.Var)
	}
	if cfgErr.Value != "not-a-number" {
		t.Errorf("Value = %q, want %q", cfgErr.Value, "not-a-number")
	}
	if cfgErr.FromDefault {
		t.Error("FromDefault = true, want false")
	}
	if !errors.Is(err, ErrInvalidInteger) {
		t.Errorf("error should wrap ErrInvalidInteger: %v", err)
	}
	if !strings.Contains(err.Error(), "SOURCE_CHANNEL_2_ID") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestLoad_MalformedPort(t *testing.T) {
	_, err := Load(Options{Environment: map[string]string{"PORT": "http"}})

	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error %v is not a *config.Error", err)
	}
	if cfgErr.Var != "PORT" {
		t.Errorf("Var = %q, want PORT", cfgErr.Var)
	}
	if !errors.Is(err, ErrInvalidInteger) {
		t.Errorf("error should wrap ErrInvalidInteger: %v", err)
	}
}

func TestLoad_ReportsEveryBadVariable(t *testing.T) {
	_, err := Load(Options{Environment: map[string]string{
		"SOURCE_CHANNEL_ID": "x",
		"API_ID":            "y",
	}})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, name := range []string{"SOURCE_CHANNEL_ID", "API_ID"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should mention %s: %v", name, err)
		}
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "BOT_TOKEN=123456:file-token\nPORT=7000\nADMIN_ID=42\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(Options{
		Environment: map[string]string{"PORT": "9000", "ADMIN_ID": ""},
		EnvFile:     path,
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BotToken != "123456:file-token" {
		t.Errorf("BotToken = %q, want value from file", cfg.BotToken)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want environment to win over file", cfg.Port)
	}
	if cfg.AdminID != 42 {
		t.Errorf("AdminID = %d, empty environment value should not hide the file", cfg.AdminID)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.env")

	if _, err := Load(Options{Environment: map[string]string{}, EnvFile: path}); err != nil {
		t.Errorf("optional env file: unexpected error %v", err)
	}
	if _, err := Load(Options{Environment: map[string]string{}, EnvFile: path, RequireEnvFile: true}); err == nil {
		t.Error("required env file: expected error")
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	lvl, err := cfg.SlogLevel()
	if err != nil {
		t.Fatalf("SlogLevel: %v", err)
	}
	if lvl != slog.LevelDebug {
		t.Errorf("level = %v, want debug", lvl)
	}

	cfg.LogLevel = "loud"
	if _, err := cfg.SlogLevel(); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestSourceChannels(t *testing.T) {
	cfg := &Config{SourceChannelID: -100, SecondSourceChannelID: -200}
	got := cfg.SourceChannels()
	if len(got) != 2 || got[0] != -100 || got[1] != -200 {
		t.Errorf("SourceChannels() = %v", got)
	}

	cfg.SecondSourceChannelID = -100
	if got := cfg.SourceChannels(); len(got) != 1 {
		t.Errorf("duplicate second source should collapse, got %v", got)
	}

	cfg.SecondSourceChannelID = 0
	if got := cfg.SourceChannels(); len(got) != 1 {
		t.Errorf("zero second source should be skipped, got %v", got)
	}
}

func TestPersistent(t *testing.T) {
	tests := []struct {
		dataDir string
		want    bool
	}{
		{"data", true},
		{"/var/lib/bacbot", true},
		{MemoryDataDir, false},
		{"", false},
	}
	for _, tt := range tests {
		cfg := &Config{DataDir: tt.dataDir}
		if got := cfg.Persistent(); got != tt.want {
			t.Errorf("Persistent(%q) = %v, want %v", tt.dataDir, got, tt.want)
		}
	}
}
