package duckdb

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds DuckDB-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Extensions to install and load (e.g., "json", "icu")
	Extensions []string `mapstructure:"extensions"`

	// Settings applied globally after connecting (e.g., memory_limit, threads).
	// enable_external_access defaults to false so student queries cannot
	// read local or remote files.
	Settings map[string]string `mapstructure:"settings"`
}

// defaultSettings are applied unless Params.Settings overrides them.
var defaultSettings = map[string]string{
	"enable_external_access": "false",
}

// parseParams decodes the adapter params. Scalar settings such as
// threads: 4 are accepted and stored as strings.
func parseParams(raw map[string]any) (*Params, error) {
	params := &Params{}
	if len(raw) == 0 {
		return params, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create params decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode duckdb params: %w", err)
	}
	return params, nil
}

// settings merges the configured settings over the defaults.
func (p *Params) settings() map[string]string {
	out := make(map[string]string, len(defaultSettings)+len(p.Settings))
	for k, v := range defaultSettings {
		out[k] = v
	}
	for k, v := range p.Settings {
		out[k] = v
	}
	return out
}
