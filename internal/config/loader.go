package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config file names, in lookup order.
const (
	FileName    = "leapgrade.yaml"
	FileNameAlt = "leapgrade.yml"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nested keys: LEAPGRADE_TARGET__DATABASE sets target.database.
const EnvPrefix = "LEAPGRADE_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// flagKeys maps flag names to config keys where they differ from the
// snake_case form of the flag.
var flagKeys = map[string]string{
	"type":       "target.type",
	"database":   "target.database",
	"addr":       "server.addr",
	"upload":     "upload.enabled",
	"upload-dir": "upload.dir",
	"base-url":   "upload.base_url",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Loaded is a loaded configuration together with where it came from.
type Loaded struct {
	*Config

	// File is the config file that was read, empty when none was found.
	File string
}

// Load reads configuration. Precedence, highest first: explicitly set
// flags, LEAPGRADE_* environment variables, the config file, defaults.
// cfgFile may be empty, in which case leapgrade.yaml is searched for from
// the working directory upwards.
func Load(cfgFile string, flags *pflag.FlagSet) (*Loaded, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfgFile = findConfigFileUpward(cwd)
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment: LEAPGRADE_TARGET__TYPE -> target.type
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.Target.ApplyDefaults()
	expandTargetEnvVars(&cfg.Target)

	// Relative paths in a config file are relative to that file.
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			base := filepath.Dir(abs)
			if isFileTarget(cfg.Target.Type) && !databaseOverridden(flags) {
				cfg.Target.Database = resolvePathRelativeTo(cfg.Target.Database, base)
			}
			if flags == nil || !flags.Changed("upload-dir") {
				cfg.Upload.Dir = resolvePathRelativeTo(cfg.Upload.Dir, base)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Loaded{Config: &cfg, File: cfgFile}, nil
}

func flagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}

// databaseOverridden reports whether target.database came from a flag or
// the environment, both of which are relative to the working directory.
func databaseOverridden(flags *pflag.FlagSet) bool {
	if flags != nil && flags.Changed("database") {
		return true
	}
	_, ok := os.LookupEnv(EnvPrefix + "TARGET__DATABASE")
	return ok
}

func isFileTarget(typ string) bool {
	return typ == "sqlite" || typ == "duckdb"
}

// findConfigFileUpward searches dir and its parents for a config file.
func findConfigFileUpward(dir string) string {
	for i := 0; i < maxUpwardSearchLevels; i++ {
		for _, name := range []string{FileName, FileNameAlt} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Empty paths, absolute paths and :memory: are returned unchanged.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandTargetEnvVars expands environment variables in sensitive target fields.
func expandTargetEnvVars(t *TargetConfig) {
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
}
