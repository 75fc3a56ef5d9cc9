package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrade/pkg/adapter"
	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/leapgrade/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapgrade/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leapgrade/pkg/adapters/sqlite"
	"github.com/leapstack-labs/leapgrade/pkg/filter"
	"github.com/leapstack-labs/leapgrade/pkg/rubric"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("type", "", "")
	fs.String("database", "", "")
	fs.Int("select-limit", 0, "")
	fs.String("log-level", "", "")
	fs.String("addr", "", "")
	fs.Bool("upload", false, "")
	fs.String("upload-dir", "", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.File)
	assert.Equal(t, "sqlite", cfg.Target.Type)
	assert.Empty(t, cfg.Target.Database)
	assert.Equal(t, DefaultSelectLimit, cfg.SelectLimit)
	assert.Equal(t, DefaultMaxQueryLength, cfg.MaxQueryLength)
	assert.Equal(t, DefaultRowLimit, cfg.RowLimit)
	assert.Equal(t, DefaultQueryTimeout, cfg.QueryTimeout)
	assert.Equal(t, filter.DefaultBlacklist(), cfg.Blacklist)
	assert.Equal(t, rubric.DefaultKeywords(), cfg.Keywords)
	assert.InDelta(t, rubric.DefaultTolerance, cfg.Tolerance, 1e-9)
	assert.False(t, cfg.Upload.Enabled)
	assert.Equal(t, DefaultUploadPrefix, cfg.Upload.Prefix)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
target:
  type: SQLite
  database: data/lahman.db
select_limit: 500
query_timeout: 30s
keywords: [SELECT, WHERE]
scale:
  close: 0.7
upload:
  enabled: true
  dir: out
  base_url: https://files.example.com
`)
	dir := filepath.Dir(path)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "sqlite", cfg.Target.Type)
	assert.Equal(t, filepath.Join(dir, "data", "lahman.db"), cfg.Target.Database)
	assert.Equal(t, 500, cfg.SelectLimit)
	assert.Equal(t, 30*time.Second, cfg.QueryTimeout)
	assert.Equal(t, []string{"SELECT", "WHERE"}, cfg.Keywords)
	assert.Equal(t, 0.7, cfg.Scale["close"])
	assert.True(t, cfg.Upload.Enabled)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.Upload.Dir)
	assert.Equal(t, "https://files.example.com", cfg.Upload.BaseURL)
}

func TestLoad_FindsFileUpward(t *testing.T) {
	path := writeConfig(t, "select_limit: 77\n")
	sub := filepath.Join(filepath.Dir(path), "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	t.Chdir(sub)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 77, cfg.SelectLimit)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
select_limit: 500
log_level: warn
server:
  addr: ":9000"
`)

	t.Setenv("LEAPGRADE_SELECT_LIMIT", "42")
	t.Setenv("LEAPGRADE_SERVER__ADDR", ":9100")
	t.Setenv("LEAPGRADE_TARGET__TYPE", "duckdb")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--select-limit=7", "--database=cli.duckdb"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.SelectLimit, "flag beats env and file")
	assert.Equal(t, ":9100", cfg.Server.Addr, "env beats file")
	assert.Equal(t, "warn", cfg.LogLevel, "file beats default")
	assert.Equal(t, "duckdb", cfg.Target.Type)
	assert.Equal(t, "cli.duckdb", cfg.Target.Database, "flag paths stay relative to the working directory")
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	path := writeConfig(t, "select_limit: 500\n")

	fs := testFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.SelectLimit)
	assert.Equal(t, "sqlite", cfg.Target.Type)
}

func TestLoad_ExpandsTargetEnvVars(t *testing.T) {
	t.Setenv("GRADER_DB_PASSWORD", "s3cret")
	path := writeConfig(t, `
target:
  type: postgres
  host: localhost
  database: lahman
  user: grader
  password: ${GRADER_DB_PASSWORD}
  schema: ${UNSET_SCHEMA_VAR}
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Target.Password)
	assert.Equal(t, "lahman", cfg.Target.Database, "postgres database is a name, not a path")
	assert.Equal(t, 5432, cfg.Target.Port)
	assert.Equal(t, "${UNSET_SCHEMA_VAR}", cfg.Target.Schema, "only credentials fields are expanded")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"unknown target", "target:\n  type: oracle\n", "unknown adapter type"},
		{"bad log level", "log_level: loud\n", "unknown log_level"},
		{"bad log format", "log_format: xml\n", "unknown log_format"},
		{"negative timeout", "query_timeout: -1s\n", "query_timeout"},
		{"zero query length", "max_query_length: 0\n", "max_query_length"},
		{"negative select limit", "select_limit: -5\n", "use 0 to disable the row cap"},
		{"bad yaml", "select_limit: [\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoad_SelectLimitZero(t *testing.T) {
	loaded, err := Load(writeConfig(t, "select_limit: 0\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.SelectLimit)
}

func TestTargetConfig_Validate_ErrorType(t *testing.T) {
	target := TargetConfig{Type: "invalid_db"}
	err := target.Validate()
	require.Error(t, err)

	var unknown *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Contains(t, unknown.Available, "sqlite")
	assert.Contains(t, err.Error(), "leapgrade.yaml")
}

func TestTargetConfig_AdapterConfig(t *testing.T) {
	target := TargetConfig{
		Type:     "postgres",
		Database: "lahman",
		Host:     "db",
		Port:     5433,
		User:     "grader",
		Password: "pw",
		Schema:   "public",
		Options:  map[string]string{"sslmode": "require"},
	}
	assert.Equal(t, adapter.Config{
		Type:     "postgres",
		Database: "lahman",
		Host:     "db",
		Port:     5433,
		Username: "grader",
		Password: "pw",
		Schema:   "public",
		Options:  map[string]string{"sslmode": "require"},
	}, target.AdapterConfig())
}

func TestConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn", LogFormat: "json"}
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)

	buf.Reset()
	cfg = &Config{LogLevel: "debug", LogFormat: "text"}
	cfg.NewLogger(&buf).Debug("details")
	assert.Contains(t, buf.String(), "msg=details")
}
