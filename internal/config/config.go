// Package config loads the CLI's optional TOML configuration file:
// default feature-matrix disables, a default cross-mode scope id, and
// streaming transport limits. The library parses purely from Go
// struct literals too, so no config file is required to use the CLI
// with its built-in defaults.
//
// Grounded on matzehuels-stacktower's toml.Unmarshal usage
// (pkg/deps/rust/cargo.go, pkg/deps/python/poetry.go): a plain struct
// decoded straight off the TOML file with no intermediate untyped map.
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lucidcode/vgraph/vgraph"
)

// Config is the CLI's optional on-disk configuration.
type Config struct {
	Features  FeaturesConfig  `toml:"features"`
	Scope     ScopeConfig     `toml:"scope"`
	Streaming StreamingConfig `toml:"streaming"`
}

// FeaturesConfig names the features disabled by default (§4.1); any
// name not recognized by vgraph.ParseFeatureName is rejected at load
// time rather than silently ignored.
type FeaturesConfig struct {
	Disabled []string `toml:"disabled"`
}

// ScopeConfig sets the CLI's default cross-mode scope id. Empty means
// the CLI mints a fresh one per invocation (api.go's withDefaultScope).
type ScopeConfig struct {
	DefaultID string `toml:"default_id"`
}

// StreamingConfig holds the [streaming] settings. Only CompressMinBytes
// is read, by the stream-demo command; MaxPayloadBytes and VerifyCRC
// are decoded but no command passes them to the transport package.
type StreamingConfig struct {
	MaxPayloadBytes  int  `toml:"max_payload_bytes"`
	CompressMinBytes int  `toml:"compress_min_bytes"`
	VerifyCRC        bool `toml:"verify_crc"`
}

// Default returns the configuration the CLI runs with when no file is
// loaded: every feature enabled, no default scope, the transport
// package's own defaults.
func Default() Config {
	return Config{
		Streaming: StreamingConfig{
			MaxPayloadBytes:  64 * 1024 * 1024,
			CompressMinBytes: 0,
			VerifyCRC:        false,
		},
	}
}

// Load reads and decodes the TOML file at path, starting from
// Default() so a partial file only overrides what it mentions.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}

// LoadIfExists behaves like Load but returns Default() without error
// when path doesn't exist, matching the CLI's "config file is
// optional" contract.
func LoadIfExists(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, err
	}
	return Load(path)
}

// DisabledFeatureMask resolves FeaturesConfig.Disabled into the
// vgraph.Feature bitmask Options.DisabledFeatures expects.
func (c Config) DisabledFeatureMask() (vgraph.Feature, error) {
	var mask vgraph.Feature
	for _, name := range c.Features.Disabled {
		f, ok := vgraph.ParseFeatureName(name)
		if !ok {
			return 0, fmt.Errorf("config: unknown feature %q", name)
		}
		mask |= f
	}
	return mask, nil
}

// ctxKey mirrors internal/vlog's context-attachment pattern so
// commands deep in the cobra tree can read the loaded config without
// it being threaded through every RunE signature.
type ctxKey int

const configKey ctxKey = 0

// WithContext attaches cfg to ctx.
func WithContext(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves the config attached to ctx, or Default() if
// none was attached.
func FromContext(ctx context.Context) Config {
	if cfg, ok := ctx.Value(configKey).(Config); ok {
		return cfg
	}
	return Default()
}
