package adapter

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrade/pkg/result"
)

// stubAdapter records Connect calls.
type stubAdapter struct {
	connectErr error
	connected  Config
}

func (s *stubAdapter) Connect(_ context.Context, cfg Config) error {
	s.connected = cfg
	return s.connectErr
}

func (s *stubAdapter) Close() error { return nil }

func (s *stubAdapter) Ping(context.Context) error { return nil }

func (s *stubAdapter) Exec(context.Context, string) error { return nil }

func (s *stubAdapter) Query(context.Context, string) (*result.ResultSet, error) {
	return &result.ResultSet{}, nil
}

func (s *stubAdapter) DialectName() string { return "stub" }

func TestUnknownAdapterError_Error(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "fake_db",
		Available: []string{"duckdb", "postgres", "sqlite"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "fake_db", "error should mention the unknown type")
	assert.Contains(t, msg, "leapgrade.yaml", "error should mention config file")
}

func TestRegister(t *testing.T) {
	Register("test_adapter_internal", func(_ *slog.Logger) Adapter { return nil })

	assert.True(t, IsRegistered("test_adapter_internal"))

	factory, ok := Get("test_adapter_internal")
	assert.True(t, ok)
	assert.NotNil(t, factory)
	assert.Contains(t, ListAdapters(), "test_adapter_internal")
}

func TestNewAdapter_EmptyType(t *testing.T) {
	_, err := NewAdapter(Config{}, nil)
	require.Error(t, err)
	assert.Equal(t, "adapter type not specified", err.Error())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	stub := &stubAdapter{}
	Register("test_open_ok", func(*slog.Logger) Adapter { return stub })

	adp, err := Open(ctx, Config{Type: "test_open_ok", Database: "lahman", MaxRows: 5}, nil)
	require.NoError(t, err)
	assert.Same(t, stub, adp)
	assert.Equal(t, "lahman", stub.connected.Database)
	assert.Equal(t, 5, stub.connected.MaxRows)

	Register("test_open_fail", func(*slog.Logger) Adapter {
		return &stubAdapter{connectErr: assert.AnError}
	})
	_, err = Open(ctx, Config{Type: "test_open_fail", Database: "lahman"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), `"lahman"`)

	_, err = Open(ctx, Config{Type: "test_open_missing"}, nil)
	var unknown *UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "test_open_missing", unknown.Type)
}
