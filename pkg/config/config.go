package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields with sane development defaults.
// The JWT secret has no default; startup fails without one.
func (c *Config) ApplyDefaults() {
	if c.Server.DBPath == "" {
		c.Server.DBPath = "./.database"
	}
	if c.Auth.RedisURL == "" {
		c.Auth.RedisURL = "redis://localhost:6379/0"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.RateLimit.RPS <= 0 {
		c.RateLimit.RPS = 5
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 10
	}
	if c.Fanout.QueueCapacity <= 0 {
		c.Fanout.QueueCapacity = 16 * 1024
	}
	if c.Janitor.Cron == "" {
		c.Janitor.Cron = "*/10 * * * *"
	}
	if c.Blob.MaxUpload <= 0 {
		c.Blob.MaxUpload = 8 << 20
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Blob.Enabled && c.Blob.Endpoint == "" {
		return fmt.Errorf("blob.endpoint is required when blob storage is enabled")
	}
	return nil
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and BURROW_CONFIG when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("BURROW_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
