package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/gymcrowd/core/metrics"
	"github.com/kilianp07/gymcrowd/core/scheduler"
	"github.com/kilianp07/gymcrowd/infra/mqtt"
)

// EnvPrefix marks environment overrides, e.g. GYMCROWD_MODEL__PATH.
const EnvPrefix = "GYMCROWD_"

type Config struct {
	Model   ModelConfig    `json:"model"`
	HTTP    HTTPConfig     `json:"http"`
	MQTT    mqtt.Config    `json:"mqtt"`
	Metrics metrics.Config `json:"metrics"`
	History HistoryConfig  `json:"history"`
	Log     LogConfig      `json:"log"`
	Sentry  SentryConfig   `json:"sentry"`
	// Planner sets the opening hours used for day forecasts.
	Planner scheduler.SchedulerConfig `json:"planner"`
}

// Load reads the file at path, applies environment overrides and defaults,
// then validates every section. An empty path loads from the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Model.SetDefaults()
	c.HTTP.SetDefaults()
	c.MQTT.SetDefaults()
	c.History.SetDefaults()
	c.Log.SetDefaults()
	c.Planner.SetDefaults()
	if c.Sentry.Environment == "" {
		c.Sentry.Environment = os.Getenv("APP_ENV")
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	for name, v := range map[string]interface{ Validate() error }{
		"model":   c.Model,
		"http":    c.HTTP,
		"mqtt":    c.MQTT,
		"history": c.History,
		"log":     c.Log,
		"sentry":  c.Sentry,
		"planner": c.Planner,
	} {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
