package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/keycat/pkg/activity"
	"github.com/Veraticus/keycat/pkg/widget"
)

// ConfigEnv names the variable holding an explicit config file path.
const ConfigEnv = "KEYCAT_CONFIG"

// Config holds all configuration for keycat
type Config struct {
	// Activity thresholds
	BurstThreshold  time.Duration `yaml:"burst_threshold" env:"KEYCAT_BURST_THRESHOLD"`
	TypingThreshold time.Duration `yaml:"typing_threshold" env:"KEYCAT_TYPING_THRESHOLD"`

	// Rendering
	MaxSurfaces   int           `yaml:"max_surfaces" env:"KEYCAT_MAX_SURFACES"`
	Redraw        string        `yaml:"redraw" env:"KEYCAT_REDRAW"`
	DecayInterval time.Duration `yaml:"decay_interval" env:"KEYCAT_DECAY_INTERVAL"`
	StatusLine    bool          `yaml:"status_line" env:"KEYCAT_STATUS_LINE"`

	// Behavior flags
	Quiet bool `yaml:"quiet" env:"KEYCAT_QUIET"`

	// Wrapped command
	Command     string   `yaml:"command" env:"KEYCAT_COMMAND"`
	DefaultArgs []string `yaml:"default_args" env:"KEYCAT_DEFAULT_ARGS" envSeparator:","`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BurstThreshold:  activity.DefaultBurstThreshold,
		TypingThreshold: activity.DefaultTypingThreshold,
		MaxSurfaces:     4,
		Redraw:          widget.RedrawOnChange.String(),
		StatusLine:      true,
	}
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	return LoadFile(getConfigPath())
}

// LoadFile loads configuration from the given file, then applies the
// environment. An empty path or a missing file leaves the defaults in place.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if path := os.Getenv(ConfigEnv); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "keycat", "config.yaml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "keycat", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.BurstThreshold <= 0 {
		return fmt.Errorf("burst_threshold must be positive")
	}
	if c.TypingThreshold <= c.BurstThreshold {
		return fmt.Errorf("typing_threshold (%v) must be greater than burst_threshold (%v)", c.TypingThreshold, c.BurstThreshold)
	}
	if c.MaxSurfaces < 1 {
		return fmt.Errorf("max_surfaces must be at least 1")
	}
	if _, err := widget.ParsePolicy(c.Redraw); err != nil {
		return err
	}
	if c.DecayInterval < 0 {
		return fmt.Errorf("decay_interval must be non-negative")
	}
	return nil
}

// Ladder returns the classification ladder for the configured thresholds.
func (c *Config) Ladder() activity.Ladder {
	return activity.NewLadder(c.BurstThreshold, c.TypingThreshold)
}

// Policy returns the configured redraw policy, falling back to on_change.
func (c *Config) Policy() widget.Policy {
	p, err := widget.ParsePolicy(c.Redraw)
	if err != nil {
		return widget.RedrawOnChange
	}
	return p
}

// WidgetOptions builds widget options from the configuration.
func (c *Config) WidgetOptions() widget.Options {
	opts := widget.DefaultOptions()
	opts.Ladder = c.Ladder()
	opts.Capacity = c.MaxSurfaces
	opts.Policy = c.Policy()
	return opts
}

// ResolveCommand returns the command to wrap: the configured command, then
// $SHELL, then /bin/sh.
func (c *Config) ResolveCommand() string {
	if c.Command != "" {
		return c.Command
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}
