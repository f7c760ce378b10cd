package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchedulerConfig defines the opening hours covered by a plan.
type SchedulerConfig struct {
	// OpenHour is the first hour forecast, CloseHour the first one excluded.
	OpenHour  int `json:"open_hour" yaml:"open_hour"`
	CloseHour int `json:"close_hour" yaml:"close_hour"`
	// Suggestions is how many of the quietest hours a plan recommends.
	Suggestions int `json:"suggestions" yaml:"suggestions"`
}

// SetDefaults fills unset fields: open until midnight, three suggestions.
func (c *SchedulerConfig) SetDefaults() {
	if c.CloseHour == 0 {
		c.CloseHour = 24
	}
	if c.Suggestions == 0 {
		c.Suggestions = 3
	}
}

// Validate checks the opening window.
func (c SchedulerConfig) Validate() error {
	if c.OpenHour < 0 || c.OpenHour > 23 {
		return fmt.Errorf("open_hour %d out of range 0-23", c.OpenHour)
	}
	if c.CloseHour <= c.OpenHour || c.CloseHour > 24 {
		return fmt.Errorf("close_hour %d must be after open_hour %d and at most 24", c.CloseHour, c.OpenHour)
	}
	if c.Suggestions < 0 {
		return errors.New("suggestions must not be negative")
	}
	return nil
}

// LoadConfig loads SchedulerConfig from a JSON or YAML file.
func LoadConfig(path string) (SchedulerConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return SchedulerConfig{}, err
	}
	defer f.Close()
	return DecodeConfig(f, strings.TrimPrefix(filepath.Ext(path), "."))
}

// DecodeConfig reads a SchedulerConfig from r, applies defaults and
// validates it.
func DecodeConfig(r io.Reader, format string) (SchedulerConfig, error) {
	var cfg SchedulerConfig
	var err error
	switch strings.ToLower(format) {
	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(&cfg)
	case "json":
		err = json.NewDecoder(r).Decode(&cfg)
	default:
		return cfg, fmt.Errorf("unsupported config format: %s", format)
	}
	if err != nil {
		return cfg, err
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}
