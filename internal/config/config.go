// Package config loads the bot configuration from environment variables,
// an optional dotenv file and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Placeholder credentials shipped as defaults. They let the configuration
// load without secrets; Warnings flags them and Telegram rejects them.
const (
	PlaceholderAPIHash  = "00000000000000000000000000000000"
	PlaceholderBotToken = "000000000:placeholder-token"
)

// DefaultEnvFile is loaded when present and no other file is requested.
const DefaultEnvFile = ".env"

// MemoryDataDir as DATA_DIR keeps predictions in memory instead of SQLite.
const MemoryDataDir = ":memory:"

// Source tells where a configuration value came from.
type Source int

// Value sources.
const (
	SourceDefault Source = iota
	SourceEnv
)

// String implements fmt.Stringer.
func (s Source) String() string {
	if s == SourceEnv {
		return "env"
	}
	return "default"
}

// Config is the process-wide configuration. It is built once by Load and
// passed to every component; nothing else reads the environment.
type Config struct {
	SourceChannelID       ChannelID `env:"SOURCE_CHANNEL_ID" envDefault:"-1002682552255" yaml:"source_channel_id"`
	SecondSourceChannelID ChannelID `env:"SOURCE_CHANNEL_2_ID" envDefault:"-1002674389383" yaml:"source_channel_2_id"`
	PredictionChannelID   ChannelID `env:"PREDICTION_CHANNEL_ID" envDefault:"-1003329818758" yaml:"prediction_channel_id"`
	AdminID               int64     `env:"ADMIN_ID" envDefault:"0" yaml:"admin_id"`
	APIID                 int       `env:"API_ID" envDefault:"29177661" yaml:"api_id"`
	APIHash               string    `env:"API_HASH" envDefault:"00000000000000000000000000000000" yaml:"api_hash"`
	BotToken              string    `env:"BOT_TOKEN" envDefault:"000000000:placeholder-token" yaml:"bot_token"`
	Port                  int       `env:"PORT" envDefault:"5000" yaml:"port"`

	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info" yaml:"log_level"`
	DataDir            string        `env:"DATA_DIR" envDefault:"data" yaml:"data_dir"`
	TelegramAPIURL     string        `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org" yaml:"telegram_api_url"`
	PollingTimeout     int           `env:"POLLING_TIMEOUT" envDefault:"30" yaml:"polling_timeout"`
	PostsPerMinute     int           `env:"POSTS_PER_MINUTE" envDefault:"20" yaml:"posts_per_minute"`
	PredictionOffset   int           `env:"PREDICTION_OFFSET" envDefault:"2" yaml:"prediction_offset"`
	PredictionAttempts int           `env:"PREDICTION_ATTEMPTS" envDefault:"3" yaml:"prediction_attempts"`
	PendingTTL         time.Duration `env:"PENDING_TTL" envDefault:"2h" yaml:"pending_ttl"`
	Retention          time.Duration `env:"RETENTION" envDefault:"720h" yaml:"retention"`
	ReportSchedule     string        `env:"REPORT_SCHEDULE" envDefault:"0 0 * * *" yaml:"report_schedule"`
	OTLPEndpoint       string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" yaml:"otlp_endpoint,omitempty"`

	sources map[string]Source
}

// Options control where Load reads variables from.
type Options struct {
	// Environment replaces the process environment when non-nil.
	Environment map[string]string

	// EnvFile is a dotenv file merged under the environment. A missing file
	// is ignored unless RequireEnvFile is set.
	EnvFile        string
	RequireEnvFile bool
}

// Load builds a Config. Every variable falls back to its default when unset
// or empty. A value that cannot be parsed yields an *Error naming the
// variable.
func Load(opts Options) (*Config, error) {
	environ, err := environment(opts)
	if err != nil {
		return nil, err
	}

	cfg := &Config{sources: make(map[string]Source)}
	err = env.ParseWithOptions(cfg, env.Options{
		Environment: environ,
		OnSet: func(tag string, _ any, isDefault bool) {
			if isDefault {
				cfg.sources[tag] = SourceDefault
			} else {
				cfg.sources[tag] = SourceEnv
			}
		},
	})
	if err != nil {
		return nil, translateEnvError(err, environ)
	}
	return cfg, nil
}

// Source reports whether the variable name was taken from the environment
// or from its default.
func (c *Config) Source(name string) Source {
	return c.sources[name]
}

// SlogLevel returns LogLevel as a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// Persistent reports whether predictions are stored on disk.
func (c *Config) Persistent() bool {
	return c.DataDir != "" && c.DataDir != MemoryDataDir
}

// SourceChannels returns the channels watched for game results, primary first.
func (c *Config) SourceChannels() []int64 {
	ids := []int64{c.SourceChannelID.Int64()}
	if second := c.SecondSourceChannelID.Int64(); second != 0 && second != ids[0] {
		ids = append(ids, second)
	}
	return ids
}

// environment merges the dotenv file with the process (or injected)
// environment. Empty values are dropped so they count as unset.
func environment(opts Options) (map[string]string, error) {
	base := opts.Environment
	if base == nil {
		base = env.ToMap(os.Environ())
	}

	merged := make(map[string]string, len(base))
	if opts.EnvFile != "" {
		fileVars, err := godotenv.Read(opts.EnvFile)
		switch {
		case err == nil:
			maps.Copy(merged, fileVars)
		case errors.Is(err, fs.ErrNotExist) && !opts.RequireEnvFile:
		default:
			return nil, fmt.Errorf("config: reading %s: %w", opts.EnvFile, err)
		}
	}
	for k, v := range base {
		if v != "" {
			merged[k] = v
		}
	}

	maps.DeleteFunc(merged, func(_, v string) bool { return v == "" })
	return merged, nil
}

// translateEnvError converts parse failures into *Error values that carry
// the variable name and the origin of the offending value.
func translateEnvError(err error, environ map[string]string) error {
	var agg env.AggregateError
	if !errors.As(err, &agg) {
		return fmt.Errorf("config: %w", err)
	}

	errs := make([]error, 0, len(agg.Errors))
	for _, e := range agg.Errors {
		var pe env.ParseError
		if !errors.As(e, &pe) {
			errs = append(errs, fmt.Errorf("config: %w", e))
			continue
		}
		errs = append(errs, fieldError(pe, environ))
	}
	return errors.Join(errs...)
}

func fieldError(pe env.ParseError, environ map[string]string) *Error {
	name, def := pe.Name, ""
	if f, ok := reflect.TypeFor[Config]().FieldByName(pe.Name); ok {
		name, _, _ = strings.Cut(f.Tag.Get("env"), ",")
		def = f.Tag.Get("envDefault")
	}

	cause := pe.Err
	if isInteger(pe.Type) && !errors.Is(cause, ErrInvalidInteger) {
		cause = fmt.Errorf("%w: %w", ErrInvalidInteger, cause)
	}

	if v, ok := environ[name]; ok {
		return &Error{Var: name, Value: v, Err: cause}
	}
	return &Error{Var: name, Value: def, FromDefault: true, Err: cause}
}

func isInteger(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return t != reflect.TypeFor[time.Duration]()
	}
	return false
}
