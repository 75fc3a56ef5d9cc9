package config

import (
	"context"
	"log/slog"
)

type (
	configKey struct{}
	loggerKey struct{}
)

// Default returns the configuration used when nothing was loaded.
func Default() *Config {
	return &Config{
		Target:         TargetConfig{Type: DefaultTargetType},
		SelectLimit:    DefaultSelectLimit,
		MaxQueryLength: DefaultMaxQueryLength,
		RowLimit:       DefaultRowLimit,
		QueryTimeout:   DefaultQueryTimeout,
		Upload:         UploadConfig{Dir: DefaultUploadDir, Prefix: DefaultUploadPrefix},
		Server:         ServerConfig{Addr: DefaultServerAddr},
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
	}
}

// WithConfig stores cfg and logger in ctx.
func WithConfig(ctx context.Context, cfg *Loaded, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey{}, cfg)
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves the loaded configuration, falling back to Default.
func FromContext(ctx context.Context) *Loaded {
	if c, ok := ctx.Value(configKey{}).(*Loaded); ok && c != nil {
		return c
	}
	return &Loaded{Config: Default()}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
