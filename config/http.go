package config

import "fmt"

// HTTPConfig configures the prediction API.
type HTTPConfig struct {
	// Address is the listen address; empty disables the API.
	Address        string    `json:"address"`
	AllowedOrigins []string  `json:"allowed_origins"`
	RateLimit      RateLimit `json:"rate_limit"`
}

// RateLimit is a per-client token bucket. Zero RPS disables limiting.
type RateLimit struct {
	RPS   float64 `json:"rps"`
	Burst int     `json:"burst"`
}

func (c *HTTPConfig) SetDefaults() {
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = int(c.RateLimit.RPS) + 1
	}
}

func (c HTTPConfig) Validate() error {
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}
