package config

import "fmt"

// DefaultModelPath is where the exported model is looked up when unset.
const DefaultModelPath = "models/gym_crowd_model.json"

// ModelConfig locates the exported model artifact.
type ModelConfig struct {
	Path string `json:"path"`
	// LoadTimeoutSeconds bounds the one-time artifact load.
	LoadTimeoutSeconds int `json:"load_timeout_seconds"`
}

func (c *ModelConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = DefaultModelPath
	}
	if c.LoadTimeoutSeconds <= 0 {
		c.LoadTimeoutSeconds = 30
	}
}

func (c ModelConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}
