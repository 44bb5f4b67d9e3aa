package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"efis-pfd/internal/efis"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Display DisplayConfig   `yaml:"display"`
	Feed    FeedConfig      `yaml:"feed"`
	Log     LogConfig       `yaml:"log"`
	Monitor MonitorConfig   `yaml:"monitor"`
	Prefs   map[string]bool `yaml:"prefs"`
}

type DisplayConfig struct {
	Title        string `yaml:"title"`
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	Fullscreen   bool   `yaml:"fullscreen"`
	TouchButtons bool   `yaml:"touch_buttons"`
	GPIO         bool   `yaml:"gpio"`
}

type FeedConfig struct {
	Addr           string        `yaml:"addr"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	Demo           bool          `yaml:"demo"`
	Sim            SimConfig     `yaml:"sim"`
}

// SimConfig describes the synthetic flight used by demo mode and feedsim.
type SimConfig struct {
	OriginLat   float64       `yaml:"origin_lat"`
	OriginLon   float64       `yaml:"origin_lon"`
	Waypoint    string        `yaml:"waypoint"`
	WaypointLat float64       `yaml:"waypoint_lat"`
	WaypointLon float64       `yaml:"waypoint_lon"`
	TickHz      float64       `yaml:"tick_hz"`
	Calibrate   time.Duration `yaml:"calibrate"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

type MonitorConfig struct {
	Enabled     bool   `yaml:"enabled"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// LoadConfig reads path over the defaults, so a file only needs the keys it
// changes.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// GetDefaultConfig returns the built-in configuration.
func GetDefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Title:  "EFIS PFD",
			Width:  1024,
			Height: 600,
		},
		Feed: FeedConfig{
			Addr:           "localhost:10000",
			ReconnectDelay: 2 * time.Second,
			Sim: SimConfig{
				OriginLat:   -22.9064,
				OriginLon:   -47.0616,
				Waypoint:    "SBKP",
				WaypointLat: -23.0074,
				WaypointLon: -47.1345,
				TickHz:      20,
				Calibrate:   3 * time.Second,
			},
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stdout",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Monitor: MonitorConfig{
			Enabled:     false,
			MetricsAddr: ":9090",
		},
		Prefs: map[string]bool{
			string(efis.PrefFlightDirector): true,
		},
	}
}

func (c *Config) Validate() error {
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("%w: display size %dx%d", ErrInvalid, c.Display.Width, c.Display.Height)
	}
	if !c.Feed.Demo && c.Feed.Addr == "" {
		return fmt.Errorf("%w: feed.addr is required unless feed.demo is set", ErrInvalid)
	}
	if c.Feed.ReconnectDelay <= 0 {
		return fmt.Errorf("%w: feed.reconnect_delay must be positive", ErrInvalid)
	}
	if c.Feed.Sim.TickHz <= 0 {
		return fmt.Errorf("%w: feed.sim.tick_hz must be positive", ErrInvalid)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	switch c.Log.Output {
	case "stdout", "stderr":
	case "file":
		if c.Log.FilePath == "" {
			return fmt.Errorf("%w: log.file_path is required for file output", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: log.output %q", ErrInvalid, c.Log.Output)
	}
	if c.Monitor.Enabled && c.Monitor.MetricsAddr == "" {
		return fmt.Errorf("%w: monitor.metrics_addr is required when enabled", ErrInvalid)
	}
	for key := range c.Prefs {
		if !knownPref(key) {
			return fmt.Errorf("%w: unknown pref %q", ErrInvalid, key)
		}
	}
	return nil
}

func knownPref(key string) bool {
	for _, k := range efis.PrefKeys {
		if string(k) == key {
			return true
		}
	}
	return false
}
