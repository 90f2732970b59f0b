// Package config loads server settings from flags, environment variables and
// an optional .env file. Flags win over the environment, which wins over the
// built-in defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/joho/godotenv"
)

// Config is everything cmd/server needs to start.
type Config struct {
	Port       int
	DBPath     string
	PolicyFile string // optional YAML/JSON policy applied at startup
	Env        string // "development" or "production"
	LogLevel   slog.Level

	SchedulerEnabled  bool
	SchedulerInterval time.Duration

	AllowedOrigins []string
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:              8080,
		DBPath:            "attendance.db",
		Env:               "development",
		LogLevel:          slog.LevelInfo,
		SchedulerEnabled:  true,
		SchedulerInterval: time.Hour,
		AllowedOrigins:    []string{"http://localhost:5173", "http://localhost:8080"},
	}
}

// Load reads a .env file if present, then the environment, then args
// (usually os.Args[1:]).
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return load(args, os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Defaults()

	var err error
	env := func(key string, apply func(string) error) {
		if err != nil {
			return
		}
		if v, ok := lookup(key); ok && v != "" {
			if perr := apply(v); perr != nil {
				err = fmt.Errorf("%s: %w", key, perr)
			}
		}
	}
	env("APP_PORT", func(v string) (e error) { cfg.Port, e = strconv.Atoi(v); return })
	env("DB_PATH", func(v string) error { cfg.DBPath = v; return nil })
	env("POLICY_FILE", func(v string) error { cfg.PolicyFile = v; return nil })
	env("APP_ENV", func(v string) error { cfg.Env = v; return nil })
	env("LOG_LEVEL", func(v string) error { return cfg.LogLevel.UnmarshalText([]byte(v)) })
	env("SCHEDULER_ENABLED", func(v string) (e error) { cfg.SchedulerEnabled, e = strconv.ParseBool(v); return })
	env("SCHEDULER_INTERVAL", func(v string) (e error) { cfg.SchedulerInterval, e = time.ParseDuration(v); return })
	env("CORS_ORIGINS", func(v string) error { cfg.AllowedOrigins = splitList(v); return nil })
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, `SQLite database path (":memory:" for in-memory)`)
	fs.StringVar(&cfg.PolicyFile, "policy", cfg.PolicyFile, "policy file applied at startup")
	fs.BoolVar(&cfg.SchedulerEnabled, "scheduler", cfg.SchedulerEnabled, "run the month-end report scheduler")
	fs.DurationVar(&cfg.SchedulerInterval, "scheduler-interval", cfg.SchedulerInterval, "how often the scheduler checks")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}
	if cfg.SchedulerInterval <= 0 {
		return Config{}, fmt.Errorf("scheduler interval must be positive, got %s", cfg.SchedulerInterval)
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is "production".
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// NewLogger builds the application logger: JSON with ECS field names, the
// same schema httplog uses for request logs.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(!c.IsProduction())
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       c.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-engine"),
		slog.String("env", c.Env),
	)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
