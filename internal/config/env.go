package config

import (
	"os"
	"strings"
	"time"
)

// Environment variables that override file settings.
const (
	EnvServerURL        = "EVENTDESK_SERVER_URL"
	EnvTimeout          = "EVENTDESK_TIMEOUT"
	EnvLogLevel         = "EVENTDESK_LOG_LEVEL"
	EnvConcurrentWrites = "EVENTDESK_CONCURRENT_WRITES"
)

// ApplyEnv overrides fields from environment variables. Invalid values are ignored.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvServerURL)); v != "" {
		c.ServerURL = NormalizeServerURL(v)
	}
	c.Timeout = getEnvDuration(EnvTimeout, c.Timeout)
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	c.ConcurrentWrites = getEnvBool(EnvConcurrentWrites, c.ConcurrentWrites)
}

// getEnvBool reads a boolean from an environment variable, returning the default if unset or invalid.
func getEnvBool(key string, defaultVal bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultVal
	}
}

// getEnvDuration reads a positive duration such as "5s" from an environment variable.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
