package config

import (
	"fmt"
	"strings"
	"time"
)

// BackendConfig configures the question-answering backend.
type BackendConfig struct {
	BaseURL  string `yaml:"base_url"`
	Endpoint string `yaml:"endpoint"`
	TopK     int    `yaml:"top_k"`   // 0 = server default
	Timeout  string `yaml:"timeout"` // empty = no timeout
}

// GetTimeout returns the request timeout. Zero means none.
func (b BackendConfig) GetTimeout() (time.Duration, error) {
	if b.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid backend timeout %q: %w", b.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid backend timeout %q: must not be negative", b.Timeout)
	}
	return d, nil
}

// GenerateURL returns the full URL requests are posted to.
func (b BackendConfig) GenerateURL() string {
	return strings.TrimRight(b.BaseURL, "/") + b.Endpoint
}
