package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Config holds user-configurable defaults for the viewer.
type Config struct {
	MinIntervalPx    float64 `json:"min_interval_px"`
	PanFraction      float64 `json:"pan_fraction"`
	ZoomFraction     float64 `json:"zoom_fraction"`
	DefaultFilter    string  `json:"default_filter"`
	RulesFile        string  `json:"rules_file"`
	LogFile          string  `json:"log_file"`
	LogLevel         string  `json:"log_level"`
	FetchTimeoutSec  int     `json:"fetch_timeout_sec"`
	MaxParallelLoads int     `json:"max_parallel_loads"`
	LabelWidth       int     `json:"label_width"`
}

// Default returns a config with sensible defaults.
func Default() Config {
	return Config{
		MinIntervalPx:    3,
		PanFraction:      0.1,
		ZoomFraction:     0.1,
		LogFile:          defaultLogFile(),
		LogLevel:         "info",
		FetchTimeoutSec:  60,
		MaxParallelLoads: 4,
		LabelWidth:       40,
	}
}

func defaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".xtimeline", "xtimeline.log")
}

// Path returns ~/.config/xtimeline/config.json (or XDG_CONFIG_HOME).
// Returns empty string if home directory cannot be determined.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "xtimeline", "config.json")
}

// Load loads config from disk; returns defaults on error.
func Load() Config {
	cfg := Default()
	p := Path()
	if p == "" {
		return cfg
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		slog.Warn("config parse error", "path", p, "error", err)
		return Default()
	}
	return cfg.normalize()
}

// normalize replaces out-of-range values with defaults.
func (c Config) normalize() Config {
	d := Default()
	if c.MinIntervalPx < 0 {
		c.MinIntervalPx = d.MinIntervalPx
	}
	if c.PanFraction <= 0 || c.PanFraction > 1 {
		c.PanFraction = d.PanFraction
	}
	if c.ZoomFraction <= 0 || c.ZoomFraction >= 0.5 {
		c.ZoomFraction = d.ZoomFraction
	}
	if c.FetchTimeoutSec <= 0 {
		c.FetchTimeoutSec = d.FetchTimeoutSec
	}
	if c.MaxParallelLoads <= 0 {
		c.MaxParallelLoads = d.MaxParallelLoads
	}
	if c.LabelWidth < 10 {
		c.LabelWidth = d.LabelWidth
	}
	return c
}

// Save writes the config to disk.
func Save(cfg Config) error {
	path := Path()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
