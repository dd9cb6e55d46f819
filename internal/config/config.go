// Package config provides configuration management for the eventdesk client.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultServerURL is the base address of the events API.
	DefaultServerURL = "http://localhost:8080/api"
	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 10 * time.Second
	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "warn"
	// DefaultLogFormat is used when no format is configured.
	DefaultLogFormat = "console"
)

// DefaultConfigDir returns the default config directory (~/.eventdesk).
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".eventdesk"), nil
}

// DefaultConfigPath returns the default config file path (~/.eventdesk/config.yml).
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

// Config holds the client configuration.
type Config struct {
	ServerURL string        `yaml:"server_url,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	LogLevel  string        `yaml:"log_level,omitempty"`
	LogFormat string        `yaml:"log_format,omitempty"`
	// ConcurrentWrites disables per-resource serialization of mutating calls.
	ConcurrentWrites bool         `yaml:"concurrent_writes,omitempty"`
	Proxy            *ProxyConfig `yaml:"proxy,omitempty"`
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		ServerURL: DefaultServerURL,
		Timeout:   DefaultTimeout,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// applyDefaults fills unset fields.
func (c *Config) applyDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
}

// Validate checks that the configuration can be used to reach the API.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return errors.New("server_url is required")
	}
	if err := ValidateServerURL(c.ServerURL); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// ValidateServerURL checks that raw is an absolute http(s) URL.
func ValidateServerURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("server URL must use http or https scheme")
	}
	if parsed.Host == "" {
		return errors.New("server URL must include a host")
	}
	return nil
}

// NormalizeServerURL trims whitespace and trailing slashes.
func NormalizeServerURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// Load reads the configuration from the given path and applies defaults.
// If the file does not exist, the default config is returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	cfg.ServerURL = NormalizeServerURL(cfg.ServerURL)
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadDefault loads the configuration from the default path.
func LoadDefault() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save writes the configuration to the given path, creating directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// Proxy URLs may carry credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// SaveDefault saves the configuration to the default path.
func (c *Config) SaveDefault() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.Save(path)
}
