// Package config provides configuration loading for patviz.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gigurra/patviz/cmd/common/player"
)

// Config represents the patviz configuration file structure.
type Config struct {
	// Speed is a preset label ("2x"), a duration ("750ms") or milliseconds.
	Speed          string `json:"speed,omitempty"`
	DefaultPattern string `json:"default_pattern,omitempty"`
	LogLevel       string `json:"log_level,omitempty"`
	LogFile        string `json:"log_file,omitempty"`
	ShowContext    *bool  `json:"show_context,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	showContext := true
	return &Config{
		Speed:          player.SpeedLabel(player.DefaultSpeed),
		DefaultPattern: "singleton",
		LogLevel:       "info",
		LogFile:        filepath.Join(ConfigDir(), "patviz.log"),
		ShowContext:    &showContext,
	}
}

// ConfigDir returns the patviz config directory (~/.patviz).
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".patviz")
}

// ConfigPath returns the path to the config file (~/.patviz/config.json).
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load loads the config from ~/.patviz/config.json.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the config from path, filling in defaults for missing fields.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	defaults := DefaultConfig()
	if config.Speed == "" {
		config.Speed = defaults.Speed
	}
	if config.DefaultPattern == "" {
		config.DefaultPattern = defaults.DefaultPattern
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.LogFile == "" {
		config.LogFile = defaults.LogFile
	}
	if config.ShowContext == nil {
		config.ShowContext = defaults.ShowContext
	}

	return &config, nil
}

// Save saves the config to ~/.patviz/config.json.
func Save(config *Config) error {
	return SaveTo(ConfigPath(), config)
}

// SaveTo writes config as indented JSON, creating the directory if needed.
func SaveTo(path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// PlaybackSpeed parses the configured speed, falling back to the default.
func (c *Config) PlaybackSpeed() time.Duration {
	if c == nil || c.Speed == "" {
		return player.DefaultSpeed
	}
	d, err := player.ParseSpeed(c.Speed)
	if err != nil {
		slog.Warn("ignoring configured speed", "speed", c.Speed, "error", err)
		return player.DefaultSpeed
	}
	return d
}

// Level maps the configured log level to slog.
func (c *Config) Level() slog.Level {
	if c == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextVisible reports whether the step context line is shown.
func (c *Config) ContextVisible() bool {
	return c == nil || c.ShowContext == nil || *c.ShowContext
}
