// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/yeetrun/yopt/pkg/yopt"
)

// ConfigName is the file looked up from the working directory upwards.
const ConfigName = ".yopt.toml"

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds the per-project settings.
type Config struct {
	Completion CompletionConfig `toml:"completion"`
	// Color is one of auto, always or never.
	Color string `toml:"color"`
	Debug bool   `toml:"debug"`
	// EnvFile is consulted after the process environment. Relative paths
	// are resolved against the directory of the config file.
	EnvFile string `toml:"env_file"`

	// Path is where the config was loaded from, empty for defaults.
	Path string `toml:"-"`
}

// CompletionConfig tunes completion output.
type CompletionConfig struct {
	// Style is used when completion is requested without a style flag.
	Style string `toml:"style"`
	// ClusterEcho is the length above which a short flag cluster is echoed
	// back instead of completed. Zero means yopt.DefaultClusterEcho.
	ClusterEcho int `toml:"cluster_echo"`
}

// DefaultConfig returns the settings used when no config file is found.
func DefaultConfig() *Config {
	return &Config{
		Completion: CompletionConfig{Style: "bash"},
		Color:      ColorAuto,
	}
}

// LoadConfig finds ConfigName in startDir or one of its parents and decodes
// it over the defaults.
func LoadConfig(startDir string) (*Config, error) {
	cfg := DefaultConfig()
	path, err := findConfigPath(startDir)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.Path = path
	if cfg.EnvFile != "" && !filepath.IsAbs(cfg.EnvFile) {
		cfg.EnvFile = filepath.Join(filepath.Dir(path), cfg.EnvFile)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Color {
	case "":
		c.Color = ColorAuto
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be one of auto, always or never, got %q", c.Color)
	}
	if c.Completion.ClusterEcho < 0 {
		return fmt.Errorf("completion.cluster_echo must not be negative, got %d", c.Completion.ClusterEcho)
	}
	_, err := c.style()
	return err
}

func (c *Config) style() (yopt.Style, error) {
	switch c.Completion.Style {
	case "", "bash":
		return yopt.Bash, nil
	case "zsh":
		return yopt.Zsh, nil
	}
	return 0, fmt.Errorf("completion.style must be bash or zsh, got %q", c.Completion.Style)
}

func findConfigPath(startDir string) (string, error) {
	dir := filepath.Clean(startDir)
	for {
		path := filepath.Join(dir, ConfigName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}
