package provider

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// HandlerConfig holds optional per-handler overrides loaded from the
// handlers config file. Nil pointer fields keep the handler default.
type HandlerConfig struct {
	RefreshIntervalHours *int  `yaml:"refresh_interval_hours"`
	RefreshRecentDays    *int  `yaml:"refresh_recent_days"`
	UseProxy             *bool `yaml:"use_proxy"`
	ReverseDefault       *bool `yaml:"reverse_default"`
	MaxCount             *int  `yaml:"max_count"`
	DateFloorDays        *int  `yaml:"date_floor_days"`
}

// Config is the full handlers config file, keyed by handler name.
type Config struct {
	Handlers map[string]HandlerConfig `yaml:"handlers"`
}

// LoadConfig reads the YAML handlers config. A missing file is not an
// error: every handler then runs on its built-in defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read handlers config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse handlers config: %w", err)
	}
	return &cfg, nil
}

// For returns the overrides for a handler name, or nil when none exist.
func (c *Config) For(name string) *HandlerConfig {
	if c == nil || c.Handlers == nil {
		return nil
	}
	if hc, ok := c.Handlers[name]; ok {
		return &hc
	}
	return nil
}

// applyOverrides merges config file overrides onto handler defaults.
func applyOverrides(settings Settings, overrides *HandlerConfig) Settings {
	if overrides == nil {
		return settings
	}
	if overrides.RefreshIntervalHours != nil {
		settings.RefreshInterval = time.Duration(*overrides.RefreshIntervalHours) * time.Hour
	}
	if overrides.RefreshRecentDays != nil {
		settings.RefreshRecent = time.Duration(*overrides.RefreshRecentDays) * 24 * time.Hour
	}
	if overrides.UseProxy != nil {
		settings.UseProxy = *overrides.UseProxy
	}
	if overrides.ReverseDefault != nil {
		settings.ReverseDefault = *overrides.ReverseDefault
	}
	if overrides.MaxCount != nil {
		settings.MaxCount = *overrides.MaxCount
	}
	if overrides.DateFloorDays != nil {
		settings.DateFloorDays = *overrides.DateFloorDays
	}
	return settings
}
