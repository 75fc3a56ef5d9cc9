// Package config loads leapgrade configuration from defaults, a
// leapgrade.yaml file, LEAPGRADE_* environment variables and command-line
// flags.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/leapgrade/pkg/adapter"
	"github.com/leapstack-labs/leapgrade/pkg/filter"
	"github.com/leapstack-labs/leapgrade/pkg/rubric"
)

// Default configuration values.
const (
	DefaultTargetType     = "sqlite"
	DefaultSelectLimit    = 10000
	DefaultMaxQueryLength = 10000
	DefaultRowLimit       = 10
	DefaultQueryTimeout   = 10 * time.Second
	DefaultUploadDir      = "uploads"
	DefaultUploadPrefix   = "results"
	DefaultServerAddr     = ":8080"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Config holds all leapgrade configuration.
type Config struct {
	Target TargetConfig `koanf:"target"`

	SelectLimit    int           `koanf:"select_limit"` // 0 disables the row cap
	MaxQueryLength int           `koanf:"max_query_length"`
	RowLimit       int           `koanf:"row_limit"`
	QueryTimeout   time.Duration `koanf:"query_timeout"`

	Blacklist []string       `koanf:"blacklist"`
	Keywords  []string       `koanf:"keywords"`
	Tolerance float64        `koanf:"tolerance"`
	Scale     map[string]any `koanf:"scale"`

	Upload UploadConfig `koanf:"upload"`
	Server ServerConfig `koanf:"server"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

// TargetConfig is the database submissions are graded against.
type TargetConfig struct {
	Type string `koanf:"type"` // sqlite, duckdb, postgres

	// Database is a file path for sqlite and duckdb, a database name for
	// postgres.
	Database string `koanf:"database"`

	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Schema   string `koanf:"schema"`

	// Options are driver-specific connection options.
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific settings such as DuckDB extensions.
	Params map[string]any `koanf:"params"`
}

// UploadConfig controls the result downloads offered to students.
type UploadConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	Prefix  string `koanf:"prefix"`
	BaseURL string `koanf:"base_url"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

func defaults() map[string]any {
	return map[string]any{
		"target.type":      DefaultTargetType,
		"select_limit":     DefaultSelectLimit,
		"max_query_length": DefaultMaxQueryLength,
		"row_limit":        DefaultRowLimit,
		"query_timeout":    DefaultQueryTimeout.String(),
		"blacklist":        filter.DefaultBlacklist(),
		"keywords":         rubric.DefaultKeywords(),
		"tolerance":        rubric.DefaultTolerance,
		"upload.enabled":   false,
		"upload.dir":       DefaultUploadDir,
		"upload.prefix":    DefaultUploadPrefix,
		"server.addr":      DefaultServerAddr,
		"log_level":        DefaultLogLevel,
		"log_format":       DefaultLogFormat,
	}
}

// ApplyDefaults fills target fields that depend on the target type.
func (t *TargetConfig) ApplyDefaults() {
	t.Type = strings.ToLower(t.Type)
	if t.Type == "postgres" && t.Port == 0 {
		t.Port = 5432
	}
}

// Validate checks that the target names a registered adapter.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{Type: t.Type, Available: adapter.ListAdapters()}
	}
	return nil
}

// AdapterConfig converts the target into an adapter configuration.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     t.Type,
		Database: t.Database,
		Host:     t.Host,
		Port:     t.Port,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
		Params:   t.Params,
	}
}

// Validate checks values the loader cannot coerce into something usable.
func (c *Config) Validate() error {
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("invalid target configuration: %w", err)
	}
	if c.SelectLimit < 0 {
		return fmt.Errorf("select_limit must not be negative, got %d (use 0 to disable the row cap)", c.SelectLimit)
	}
	if c.MaxQueryLength < 1 {
		return fmt.Errorf("max_query_length must be positive, got %d", c.MaxQueryLength)
	}
	if c.QueryTimeout < 0 {
		return fmt.Errorf("query_timeout must not be negative, got %s", c.QueryTimeout)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q (want text or json)", c.LogFormat)
	}
	return nil
}

// NewLogger builds the logger described by the log_level and log_format
// settings, writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("unknown log_level %q: %w", s, err)
	}
	return level, nil
}
