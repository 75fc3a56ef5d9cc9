// Package testutil provides shared test fixtures: a logger that writes
// through the test log and a small Lahman baseball database.
package testutil

import (
	"log/slog"
	"strings"
	"testing"
)

// NewTestLogger returns a debug-level logger that writes to t.Log, so
// output shows up only for failing tests or under -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(tbWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type tbWriter struct {
	tb testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	// slog terminates each record with a newline; t.Log adds its own.
	w.tb.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
