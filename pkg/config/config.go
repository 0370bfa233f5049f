// Package config handles Lightwalker application configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/borgmon/lightwalker/pkg/models"
)

// Config is the root configuration structure.
type Config struct {
	Global        GlobalConfig        `yaml:"global" mapstructure:"global"`
	Database      DatabaseConfig      `yaml:"database" mapstructure:"database"`
	Logging       LoggingConfig       `yaml:"logging" mapstructure:"logging"`
	Timeline      TimelineConfig      `yaml:"timeline" mapstructure:"timeline"`
	Notifications NotificationsConfig `yaml:"notifications" mapstructure:"notifications"`
}

// GlobalConfig contains global settings.
type GlobalConfig struct {
	// DataDir is where Lightwalker stores its data (default: ~/.local/share/lightwalker).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/lightwalker).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// DatabaseConfig contains catalog database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`

	// BusyTimeoutMs is how long to wait for a locked database.
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level        string `yaml:"level" mapstructure:"level"`
	Format       string `yaml:"format" mapstructure:"format"`
	EnableCaller bool   `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// TimelineConfig contains timeline rendering defaults.
type TimelineConfig struct {
	// PixelsPerMinute is the initial zoom level.
	PixelsPerMinute float64 `yaml:"pixels_per_minute" mapstructure:"pixels_per_minute"`

	// TouchMode snaps taps to 15 minute slots instead of single minutes.
	TouchMode bool `yaml:"touch_mode" mapstructure:"touch_mode"`

	// ClockTick is how often the live clock advances the timeline.
	ClockTick time.Duration `yaml:"clock_tick" mapstructure:"clock_tick"`
}

// NotificationsConfig contains defaults applied when the user has no saved settings.
type NotificationsConfig struct {
	DefaultMinutesBefore int `yaml:"default_minutes_before" mapstructure:"default_minutes_before"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "lightwalker"),
			ConfigDir: filepath.Join(homeDir, ".config", "lightwalker"),
		},
		Database: DatabaseConfig{
			BusyTimeoutMs: 5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Timeline: TimelineConfig{
			PixelsPerMinute: 4,
			ClockTick:       time.Second,
		},
		Notifications: NotificationsConfig{
			DefaultMinutesBefore: 5,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.BusyTimeoutMs < 0 {
		return fmt.Errorf("database.busy_timeout_ms must not be negative")
	}
	if c.Timeline.PixelsPerMinute <= 0 {
		return fmt.Errorf("timeline.pixels_per_minute must be positive")
	}
	if c.Timeline.ClockTick < 100*time.Millisecond {
		return fmt.Errorf("timeline.clock_tick must be at least 100ms")
	}
	if c.Notifications.DefaultMinutesBefore < 0 {
		return fmt.Errorf("notifications.default_minutes_before must not be negative")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json")
	}
	return nil
}

// NotificationDefaults returns the notification settings used until the user saves their own.
func (c *Config) NotificationDefaults() models.NotificationSettings {
	s := models.DefaultNotificationSettings()
	s.ShowMinutesBefore = c.Notifications.DefaultMinutesBefore
	return s
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Global.DataDir, c.Global.ConfigDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the full database path.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Global.DataDir, "lightwalker.db")
}
