package config

import (
	"fmt"

	"github.com/kilianp07/gymcrowd/core/factory"
)

// LogConfig controls application logging.
type LogConfig struct {
	Level string `json:"level"`
	// Format is "json" or "console". Empty derives it from APP_ENV.
	Format string `json:"format"`
}

func (c *LogConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

func (c LogConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %s", c.Level)
	}
	switch c.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}

// HistoryConfig defines settings for prediction history storage and rotation.
type HistoryConfig struct {
	// Backend selects the store type: "none", "jsonl", "sqlite" or "postgres".
	Backend string `json:"backend"`
	// Path is the file location of the jsonl and sqlite stores.
	Path string `json:"path"`
	// DSN is the PostgreSQL connection string.
	DSN string `json:"dsn"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *HistoryConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if c.Path == "" {
		switch c.Backend {
		case "jsonl":
			c.Path = "predictions.jsonl"
		case "sqlite":
			c.Path = "predictions.db"
		}
	}
}

// Validate checks mandatory fields.
func (c HistoryConfig) Validate() error {
	switch c.Backend {
	case "none":
	case "jsonl", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("path is required")
		}
	case "postgres":
		if c.DSN == "" {
			return fmt.Errorf("dsn is required")
		}
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	return nil
}

// Enabled reports whether a store is configured.
func (c HistoryConfig) Enabled() bool { return c.Backend != "none" && c.Backend != "" }

// ModuleConfig converts the section to a store factory configuration.
func (c HistoryConfig) ModuleConfig() factory.ModuleConfig {
	conf := map[string]any{}
	switch c.Backend {
	case "jsonl":
		conf["path"] = c.Path
		if c.MaxSizeMB > 0 {
			conf["max_size_mb"] = c.MaxSizeMB
			conf["max_backups"] = c.MaxBackups
			conf["max_age_days"] = c.MaxAgeDays
		}
	case "sqlite":
		conf["path"] = c.Path
	case "postgres":
		conf["dsn"] = c.DSN
	}
	return factory.ModuleConfig{Type: c.Backend, Conf: conf}
}
