// Package adapter defines how the grader talks to a database.
//
// Concrete adapters live in pkg/adapters/ and register themselves by name
// from their init functions. Queries return a fully read, row-capped
// result.ResultSet so callers never hold open cursors.
package adapter

import (
	"context"

	"github.com/leapstack-labs/leapgrade/pkg/result"
)

// Config holds connection settings for an adapter.
type Config struct {
	Type string

	// Database is the database name, or the file path for embedded engines.
	// Embedded engines open an in-memory database when it is empty.
	Database string

	Host     string
	Port     int
	Username string
	Password string
	Schema   string

	// Options are driver connection parameters (e.g. sslmode).
	Options map[string]string

	// Params holds adapter-specific settings decoded by the adapter itself.
	Params map[string]any

	// MaxRows caps the rows read from any single query. Zero means no cap.
	MaxRows int
}

// Adapter is the contract every database adapter implements.
type Adapter interface {
	// Connect opens the connection described by cfg.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Ping checks the connection is alive.
	Ping(ctx context.Context) error

	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, sql string) error

	// Query runs a statement and reads at most Config.MaxRows rows of its
	// result.
	Query(ctx context.Context, sql string) (*result.ResultSet, error)

	// DialectName names the SQL dialect spoken by the database.
	DialectName() string
}
