package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/leapgrade/pkg/adapter"
)

// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/leapgrade/pkg/adapters/sqlite"
func init() {
	adapter.Register("sqlite", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
