// SPDX-License-Identifier: Apache-2.0

// Package config handles officemd configuration from a YAML file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/docscope/officemd/internal/render"
)

// Config is the top-level officemd configuration.
type Config struct {
	Delimiter string        `yaml:"delimiter"`
	MaxDepth  int           `yaml:"max_depth"`
	LogLevel  string        `yaml:"log_level"` // debug | info | warn | error
	Workers   int           `yaml:"workers"`
	Preview   PreviewConfig `yaml:"preview"`
}

// PreviewConfig controls HTML preview output.
type PreviewConfig struct {
	Sanitize bool   `yaml:"sanitize"`
	Title    string `yaml:"title"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Preview: PreviewConfig{Sanitize: true}}
	cfg.applyDefaults()
	return cfg
}

// Load reads the configuration at path. An empty path yields Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration and fills in defaults. Keys absent from
// data keep their Default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Delimiter == "" {
		c.Delimiter = render.DefaultDelimiter
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = render.DefaultMaxDepth
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Preview.Title == "" {
		c.Preview.Title = "Document preview"
	}
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// Logger builds a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
