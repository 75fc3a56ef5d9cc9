// Package sqlite provides a SQLite database adapter for leapgrade, built on
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/leapstack-labs/leapgrade/pkg/adapter"
)

const memoryDatabase = ":memory:"

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
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
	return "sqlite"
}

// Connect opens the SQLite file named by cfg.Database, or an in-memory
// database when it is empty. File databases are opened query-only unless
// the query_only option says otherwise.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildDSN(cfg)
	a.Logger.Debug("connecting to sqlite", slog.String("dsn", dsn))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}

	// Each connection to :memory: is a separate database.
	if isMemory(cfg.Database) {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

func isMemory(database string) bool {
	return database == "" || database == memoryDatabase
}

// buildDSN turns options into _pragma parameters, e.g. busy_timeout: 5000
// becomes _pragma=busy_timeout(5000).
func buildDSN(cfg adapter.Config) string {
	path := cfg.Database
	pragmas := make(map[string]string, len(cfg.Options)+1)
	if isMemory(path) {
		path = memoryDatabase
	} else {
		pragmas["query_only"] = "1"
	}
	for k, v := range cfg.Options {
		pragmas[k] = v
	}
	if len(pragmas) == 0 {
		return path
	}

	keys := make([]string, 0, len(pragmas))
	for k := range pragmas {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make([]string, len(keys))
	for i, k := range keys {
		params[i] = fmt.Sprintf("_pragma=%s(%s)", k, pragmas[k])
	}
	return path + "?" + strings.Join(params, "&")
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
