// Package duckdb provides a DuckDB database adapter for leapgrade.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/leapstack-labs/leapgrade/pkg/adapter"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "duckdb"
}

// Connect opens the DuckDB database file named by cfg.Database.
// An empty database or ":memory:" opens an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	dsn := buildDSN(cfg)
	a.Logger.Debug("connecting to duckdb", slog.String("dsn", dsn))

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg

	if err := a.applyParams(ctx, params); err != nil {
		_ = db.Close()
		a.DB = nil
		return err
	}
	return nil
}

// buildDSN appends connection options as query parameters to the path.
func buildDSN(cfg adapter.Config) string {
	path := cfg.Database
	if path == "" {
		path = ":memory:"
	}
	if len(cfg.Options) == 0 {
		return path
	}

	q := url.Values{}
	for k, v := range cfg.Options {
		q.Set(k, v)
	}
	return path + "?" + q.Encode()
}

// applyParams loads extensions, then applies global settings. Extensions
// come first because settings may switch off external access.
func (a *Adapter) applyParams(ctx context.Context, params *Params) error {
	for _, ext := range params.Extensions {
		if !identRe.MatchString(ext) {
			return fmt.Errorf("invalid duckdb extension name %q", ext)
		}
		if err := a.Exec(ctx, "INSTALL "+ext); err != nil {
			return fmt.Errorf("failed to install extension %s: %w", ext, err)
		}
		if err := a.Exec(ctx, "LOAD "+ext); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	settings := params.settings()
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !identRe.MatchString(k) {
			return fmt.Errorf("invalid duckdb setting name %q", k)
		}
		value := strings.ReplaceAll(settings[k], "'", "''")
		if err := a.Exec(ctx, fmt.Sprintf("SET GLOBAL %s = '%s'", k, value)); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", k, err)
		}
		a.Logger.Debug("applied duckdb setting", slog.String("name", k), slog.String("value", settings[k]))
	}
	return nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
