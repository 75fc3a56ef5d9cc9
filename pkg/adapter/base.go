package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapgrade/pkg/result"
)

// BaseSQLAdapter provides the database/sql plumbing shared by adapters.
// Embed it in concrete adapters for Close, Ping, Exec and Query.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Ping verifies the connection is alive.
func (b *BaseSQLAdapter) Ping(ctx context.Context) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if err := b.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	_, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement and reads its rows, stopping at
// Cfg.MaxRows. The cap applies regardless of any LIMIT in the statement.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string) (*result.ResultSet, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rs, err := result.Scan(rows, b.Cfg.MaxRows)
	if err != nil {
		return nil, fmt.Errorf("failed to read query results: %w", err)
	}

	if b.Logger != nil {
		b.Logger.Debug("query complete",
			slog.Int("rows", rs.RowCount()),
			slog.Int("columns", rs.ColumnCount()),
			slog.Int("max_rows", b.Cfg.MaxRows))
	}
	return rs, nil
}
