// Package config loads and validates the optional .toolwrap configuration
// file. Both YAML (.toolwrap) and TOML (.toolwrap.toml) are accepted.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Default values for runner configuration.
const (
	DefaultMaxOutput = 1 << 20 // 1 MB per stream
	DefaultLogLevel  = "warn"
)

// File names searched for, in order, in each directory.
const (
	FileName     = ".toolwrap"
	TOMLFileName = ".toolwrap.toml"
)

// EnvFile names an explicit config file, bypassing discovery.
const EnvFile = "TOOLWRAP_CONFIG"

// Config holds the parsed configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int                   `yaml:"version" toml:"version"`
	RawTimeout   string                `yaml:"timeout" toml:"timeout"`       // e.g. "5m", "30s"; empty means none
	RawMaxOutput int                   `yaml:"max_output" toml:"max_output"` // bytes captured per stream
	Log          LogConfig             `yaml:"log" toml:"log"`
	Tools        map[string]ToolConfig `yaml:"tools" toml:"tools"` // keyed by launcher profile name
}

// LogConfig controls the zerolog logger.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`   // trace, debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // console (default) or json
}

// ToolConfig overrides launcher behaviour for one wrapped tool.
type ToolConfig struct {
	Quote      *bool  `yaml:"quote" toml:"quote"`     // false joins arguments without escaping
	RawTimeout string `yaml:"timeout" toml:"timeout"` // overrides the global timeout
}

// Timeout returns the global deadline, or zero for none.
func (c *Config) Timeout() time.Duration {
	d, _ := parseTimeout(c.RawTimeout)
	return d
}

// ToolTimeout returns the deadline for the named tool, falling back to the
// global one.
func (c *Config) ToolTimeout(name string) time.Duration {
	if tc, ok := c.Tools[name]; ok && tc.RawTimeout != "" {
		d, _ := parseTimeout(tc.RawTimeout)
		return d
	}
	return c.Timeout()
}

// Quote reports whether arguments for the named tool are escaped, falling
// back to def when unset.
func (c *Config) Quote(name string, def bool) bool {
	if tc, ok := c.Tools[name]; ok && tc.Quote != nil {
		return *tc.Quote
	}
	return def
}

// MaxOutputBytes returns the configured capture size or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// LogLevel returns the configured log level, or def when unset.
func (c *Config) LogLevel(def string) string {
	if c.Log.Level != "" {
		return c.Log.Level
	}
	return def
}

// Validate reports malformed durations and unknown log formats.
func (c *Config) Validate() error {
	if _, err := parseTimeout(c.RawTimeout); err != nil {
		return errors.Wrap(err, "timeout")
	}
	for name, tc := range c.Tools {
		if _, err := parseTimeout(tc.RawTimeout); err != nil {
			return errors.Wrapf(err, "tools.%s.timeout", name)
		}
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return errors.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}

func parseTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.Errorf("negative duration %q", raw)
	}
	return d, nil
}

// LoadResult holds the parsed config and where it came from.
type LoadResult struct {
	Config *Config
	Path   string // empty when defaults are used
}

// Load returns the configuration for dir. If TOOLWRAP_CONFIG is set that file
// is read. Otherwise the nearest .toolwrap or .toolwrap.toml found walking
// upward from dir is used. If none exists, a default Config is returned.
func Load(dir string) (*LoadResult, error) {
	path := os.Getenv(EnvFile)
	if path == "" {
		var err error
		path, err = find(dir)
		if err != nil {
			return nil, err
		}
		if path == "" {
			return &LoadResult{Config: &Config{}}, nil
		}
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, Path: path}, nil
}

// LoadFile parses one config file. Files ending in .toml are TOML, anything
// else is YAML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	cfg := &Config{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", path)
	}
	return cfg, nil
}

// find walks upward from dir and returns the first config file found, or ""
// when the filesystem root is reached without one.
func find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "resolving config directory")
	}
	for {
		for _, name := range []string{FileName, TOMLFileName} {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
