// Package config loads and stores the persisted magnifier settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the persisted settings file. The core reads initial values
// and writes back on mutation; everything else about storage lives
// here.
type Config struct {
	SourceMonitor string  `yaml:"sourceMonitor"`
	DestMonitor   string  `yaml:"destMonitor"`
	Zoom          float32 `yaml:"zoom"`
	TrackingMode  string  `yaml:"trackingMode"`
	BlockCursor   bool    `yaml:"blockCursor"`
	InvertColors  bool    `yaml:"invertColors"`
	AutoLaunch    bool    `yaml:"autoLaunch"`

	path string `yaml:"-"`
}

// Default returns the settings used when no file exists yet.
func Default() *Config {
	return &Config{
		Zoom:         2.0,
		TrackingMode: "Auto",
		BlockCursor:  true,
	}
}

// DefaultPath is the per-user config location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "magnifier", "config.yaml"), nil
}

// Load reads the config at path, tolerating a missing file by
// returning defaults. An empty path uses DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config back to its path, creating parent
// directories as needed.
func (c *Config) Save() error {
	if c.path == "" {
		var err error
		c.path, err = DefaultPath()
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Path returns where the config is stored.
func (c *Config) Path() string { return c.path }
