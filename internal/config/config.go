package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all qachat configuration.
type Config struct {
	Name string `yaml:"name"`

	// Backend the chat talks to
	Backend BackendConfig `yaml:"backend"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "qachat",

		Backend: BackendConfig{
			BaseURL:  "http://localhost:8000",
			Endpoint: "/generate",
		},

		UI: UIConfig{
			Theme:         ThemeAuto,
			Markdown:      true,
			ResolvePolicy: "placeholder",
			CharLimit:     4096,
		},

		Logging: LoggingConfig{
			Level:     "info",
			Format:    "json",
			Dir:       filepath.Join(".qachat", "logs"),
			DebugMode: false,
		},
	}
}

// DefaultConfigPath returns the default path to .qachat/config.yaml.
func DefaultConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".qachat", "config.yaml")
	}
	return filepath.Join(cwd, ".qachat", "config.yaml")
}

// Load loads configuration from a YAML file and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// YAML renders the configuration as it would be saved.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("QACHAT_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("QACHAT_ENDPOINT"); v != "" {
		c.Backend.Endpoint = v
	}
	if v := os.Getenv("QACHAT_TOP_K"); v != "" {
		k, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid QACHAT_TOP_K %q: %w", v, err)
		}
		c.Backend.TopK = k
	}
	if v := os.Getenv("QACHAT_TIMEOUT"); v != "" {
		c.Backend.Timeout = v
	}
	if v := os.Getenv("QACHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("QACHAT_RESOLVE_POLICY"); v != "" {
		c.UI.ResolvePolicy = v
	}
	if v := os.Getenv("QACHAT_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid QACHAT_DEBUG %q: %w", v, err)
		}
		c.Logging.DebugMode = debug
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid backend base_url %q: %w", c.Backend.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid backend base_url %q: scheme must be http or https", c.Backend.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid backend base_url %q: missing host", c.Backend.BaseURL)
	}
	if !strings.HasPrefix(c.Backend.Endpoint, "/") {
		return fmt.Errorf("invalid backend endpoint %q: must start with /", c.Backend.Endpoint)
	}
	if c.Backend.TopK < 0 {
		return fmt.Errorf("invalid backend top_k %d: must not be negative", c.Backend.TopK)
	}
	if _, err := c.Backend.GetTimeout(); err != nil {
		return err
	}

	if !isValid(c.UI.Theme, ValidThemes) {
		return fmt.Errorf("invalid ui theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}
	if !isValid(c.UI.ResolvePolicy, ValidResolvePolicies) {
		return fmt.Errorf("invalid ui resolve_policy: %s (valid: %v)", c.UI.ResolvePolicy, ValidResolvePolicies)
	}

	if !isValid(c.Logging.Format, ValidLogFormats) {
		return fmt.Errorf("invalid logging format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}

	return nil
}

func isValid(v string, valid []string) bool {
	for _, candidate := range valid {
		if v == candidate {
			return true
		}
	}
	return false
}
