// Package config loads ripdb settings from a YAML file, a .env file and the
// environment, in increasing order of precedence. Command-line flags are
// applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ripdb/internal/schema"
	"github.com/roach88/ripdb/internal/store"
)

// DefaultDatabase is the store file used when nothing else is configured.
const DefaultDatabase = "database.db"

// Config holds all ripdb settings.
type Config struct {
	Database    string        `yaml:"database"`     // path to the SQLite file
	Schema      string        `yaml:"schema"`       // optional CUE schema file replacing the built-in tables
	IndexMode   string        `yaml:"index_mode"`   // all | last-per-table
	JournalMode string        `yaml:"journal_mode"` // wal | delete | truncate | ...
	BusyTimeout time.Duration `yaml:"busy_timeout"`
	ForeignKeys bool          `yaml:"foreign_keys"`
	Decode      string        `yaml:"decode"` // ignore | replace | strict
	LogLevel    string        `yaml:"log_level"`
	Commit      CommitConfig  `yaml:"commit"`
}

// CommitConfig is the commit retry policy.
type CommitConfig struct {
	Backoff     string        `yaml:"backoff"` // fixed | exponential
	Interval    time.Duration `yaml:"interval"`
	MaxInterval time.Duration `yaml:"max_interval"`
	MaxAttempts int           `yaml:"max_attempts"` // 0 = unbounded
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database:    DefaultDatabase,
		IndexMode:   string(schema.IndexAll),
		JournalMode: "wal",
		BusyTimeout: store.DefaultBusyTimeout,
		Decode:      string(store.DecodeIgnore),
		LogLevel:    "info",
		Commit: CommitConfig{
			Backoff:  string(store.BackoffFixed),
			Interval: store.DefaultCommitInterval,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies .env and
// environment overrides. An empty path skips the file. A missing .env file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from RIPDB_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("RIPDB_DB"); v != "" {
		c.Database = v
	}
	if v := getenv("RIPDB_SCHEMA"); v != "" {
		c.Schema = v
	}
	if v := getenv("RIPDB_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("RIPDB_DECODE"); v != "" {
		c.Decode = v
	}
	if v := getenv("RIPDB_JOURNAL_MODE"); v != "" {
		c.JournalMode = v
	}
	if v := getenv("RIPDB_COMMIT_BACKOFF"); v != "" {
		c.Commit.Backoff = v
	}
	if v := getenv("RIPDB_COMMIT_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RIPDB_COMMIT_MAX_ATTEMPTS: %w", err)
		}
		c.Commit.MaxAttempts = n
	}
	if v := getenv("RIPDB_COMMIT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RIPDB_COMMIT_INTERVAL: %w", err)
		}
		c.Commit.Interval = d
	}
	return nil
}

// Validate checks every enumerated setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("config: database path is empty")
	}
	if _, err := schema.ParseIndexMode(c.IndexMode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := store.ParseDecodePolicy(c.Decode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.BusyTimeout < 0 {
		return errors.New("config: negative busy_timeout")
	}
	policy, err := c.RetryPolicy()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// RetryPolicy converts the commit settings.
func (c Config) RetryPolicy() (store.RetryPolicy, error) {
	backoff, err := store.ParseBackoff(c.Commit.Backoff)
	if err != nil {
		return store.RetryPolicy{}, err
	}
	return store.RetryPolicy{
		Backoff:     backoff,
		Interval:    c.Commit.Interval,
		MaxInterval: c.Commit.MaxInterval,
		MaxAttempts: c.Commit.MaxAttempts,
	}, nil
}

// StoreOptions converts the settings into store options. set may be nil to
// use the built-in schema; its index mode is set from the config.
func (c Config) StoreOptions(set *schema.Set, log *slog.Logger) ([]store.Option, error) {
	policy, err := c.RetryPolicy()
	if err != nil {
		return nil, err
	}
	decode, err := store.ParseDecodePolicy(c.Decode)
	if err != nil {
		return nil, err
	}
	mode, err := schema.ParseIndexMode(c.IndexMode)
	if err != nil {
		return nil, err
	}

	if set == nil {
		set, err = schema.Default()
		if err != nil {
			return nil, err
		}
	}
	set.Mode = mode

	opts := []store.Option{
		store.WithSchema(set),
		store.WithRetryPolicy(policy),
		store.WithDecodePolicy(decode),
		store.WithJournalMode(c.JournalMode),
		store.WithBusyTimeout(c.BusyTimeout),
		store.WithForeignKeys(c.ForeignKeys),
	}
	if log != nil {
		opts = append(opts, store.WithLogger(log))
	}
	return opts, nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
