// Package config loads gocas settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	gocas "github.com/njchilds90/gocas"
)

// Config holds all gocas configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Plot    PlotConfig    `yaml:"plot"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig bounds the expression engine.
type EngineConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// PlotConfig configures the gnuplot collaborator.
type PlotConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Samples int      `yaml:"samples"`
	XRange  string   `yaml:"xrange"` // "a:b", empty for gnuplot's default
	YRange  string   `yaml:"yrange"`
}

// ServerConfig configures the HTTP tool server.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	MaxBodyBytes    int64  `yaml:"max_body_bytes"`
	CacheSize       int    `yaml:"cache_size"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxDepth: gocas.MaxDepth,
		},
		Plot: PlotConfig{
			Command: "gnuplot",
			Args:    []string{"-persist"},
			Samples: 200,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			MaxBodyBytes:    1 << 20,
			CacheSize:       256,
			ReadTimeout:     "15s",
			WriteTimeout:    "15s",
			ShutdownTimeout: "5s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Engine.MaxDepth <= 0 || c.Engine.MaxDepth > gocas.MaxDepth {
		return fmt.Errorf("engine.max_depth must be in 1..%d, got %d", gocas.MaxDepth, c.Engine.MaxDepth)
	}
	if c.Plot.Command == "" {
		return fmt.Errorf("plot.command must not be empty")
	}
	if c.Plot.Samples <= 0 {
		return fmt.Errorf("plot.samples must be positive, got %d", c.Plot.Samples)
	}
	for key, r := range map[string]string{"plot.xrange": c.Plot.XRange, "plot.yrange": c.Plot.YRange} {
		if r == "" {
			continue
		}
		if _, _, err := ParseRange(r); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if c.Server.CacheSize < 0 {
		return fmt.Errorf("server.cache_size must not be negative")
	}
	for key, d := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GOCAS_MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.MaxDepth = n
		}
	}
	if v := os.Getenv("GOCAS_GNUPLOT"); v != "" {
		c.Plot.Command = v
	}
	if v := os.Getenv("GOCAS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("GOCAS_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("GOCAS_LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
}

// ParseRange parses "a:b" into its bounds. Bounds must satisfy a < b.
func ParseRange(s string) (lo, hi float64, err error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("range %q: want a:b", s)
	}
	if lo, err = strconv.ParseFloat(strings.TrimSpace(a), 64); err != nil {
		return 0, 0, fmt.Errorf("range %q: %w", s, err)
	}
	if hi, err = strconv.ParseFloat(strings.TrimSpace(b), 64); err != nil {
		return 0, 0, fmt.Errorf("range %q: %w", s, err)
	}
	if lo >= hi {
		return 0, 0, fmt.Errorf("range %q: lower bound must be below upper bound", s)
	}
	return lo, hi, nil
}

// Timeout returns a duration setting, or fallback when it does not parse.
func Timeout(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
