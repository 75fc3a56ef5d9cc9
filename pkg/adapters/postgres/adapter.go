// Package postgres provides a PostgreSQL database adapter for leapgrade.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/leapstack-labs/leapgrade/pkg/adapter"
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
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
	return "postgres"
}

// Connect establishes a connection to PostgreSQL. Sessions are read-only
// unless options set default_transaction_read_only explicitly.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	connCfg, err := pgx.ParseConfig(buildPostgresDSN(cfg))
	if err != nil {
		return fmt.Errorf("invalid postgres connection settings: %w", err)
	}
	if cfg.Schema != "" {
		connCfg.RuntimeParams["search_path"] = cfg.Schema
	}

	a.Logger.Debug("connecting to postgres", slog.String("host", connCfg.Host), slog.String("database", cfg.Database))

	db := stdlib.OpenDB(*connCfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildPostgresDSN constructs a keyword/value PostgreSQL connection string.
// Options other than sslmode are passed through; pgx sends unknown keys to
// the server as session parameters. standard_conforming_strings is always on.
func buildPostgresDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	opts := map[string]string{
		"sslmode":                       "disable",
		"default_transaction_read_only": "on",
	}
	for k, v := range cfg.Options {
		opts[k] = v
	}
	// Query filtering assumes backslashes in '...' are literal.
	opts["standard_conforming_strings"] = "on"

	parts := []string{
		"host=" + quoteDSNValue(host),
		fmt.Sprintf("port=%d", port),
		"dbname=" + quoteDSNValue(cfg.Database),
		"sslmode=" + quoteDSNValue(opts["sslmode"]),
	}
	if cfg.Username != "" {
		parts = append(parts, "user="+quoteDSNValue(cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+quoteDSNValue(cfg.Password))
	}

	keys := make([]string, 0, len(opts))
	for k := range opts {
		if k != "sslmode" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+quoteDSNValue(opts[k]))
	}

	return strings.Join(parts, " ")
}

// quoteDSNValue single-quotes values that are empty or hold spaces, quotes
// or backslashes.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
