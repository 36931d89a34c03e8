// Package config loads CLI configuration from an optional tendon.toml,
// overlaid with flag values, using koanf the way encr.dev's userconfig
// package loads user settings.
package config

import (
	"io/fs"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the resolver's tunable behavior.
type Config struct {
	// StdlibSource is the filesystem path to the standard-library source
	// tree injected per spec §6; empty disables injection.
	StdlibSource string `koanf:"stdlib_source" default:""`
	// SkipPrecheck disables the external build-tool precondition check.
	SkipPrecheck bool `koanf:"skip_precheck" default:"false"`
	// MaxParallelPackages bounds how many packages are walked
	// concurrently; 0 means GOMAXPROCS.
	MaxParallelPackages int `koanf:"max_parallel_packages" default:"0"`
	// LogLevel is a zerolog level name ("debug", "info", "warn", ...).
	LogLevel string `koanf:"log_level" default:"info"`
}

// Default returns the configuration's documented defaults.
func Default() Config {
	return Config{LogLevel: "info"}
}

// Load merges Default() with path (if non-empty and present) using
// koanf's TOML parser, returning the merged configuration.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, errors.Wrap(err, "unable to parse config file")
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return cfg, errors.Wrap(err, "unable to unmarshal config")
	}
	return cfg, nil
}
