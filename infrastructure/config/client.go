package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ClientConfig configures treectl and any other API client.
type ClientConfig struct {
	APIURL         string        `env:"TREE_API_URL" validate:"required,url"`
	Token          string        `env:"TREE_TOKEN"`
	Timeout        time.Duration `env:"TREE_API_TIMEOUT" validate:"gt=0"`
	DebounceWindow time.Duration `env:"DEBOUNCE_WINDOW" validate:"gt=0"`
	Verbose        bool          `env:"TREE_VERBOSE"`
}

// DefaultClient returns the client defaults: the API on its default port and
// a 400ms quiescence window for coalescing edits.
func DefaultClient() *ClientConfig {
	return &ClientConfig{
		APIURL:         "http://localhost:5175",
		Timeout:        10 * time.Second,
		DebounceWindow: 400 * time.Millisecond,
	}
}

// LoadClientConfig reads client settings from the environment.
func LoadClientConfig() (*ClientConfig, error) {
	cfg := DefaultClient()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}
