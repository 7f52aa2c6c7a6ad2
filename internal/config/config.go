// Package config handles odoo-mcp configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/odoo-mcp/config.yaml, /etc/odoo-mcp/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "odoo-mcp", "config.yaml"))
	}

	paths = append(paths, "/etc/odoo-mcp/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all odoo-mcp configuration.
type Config struct {
	Odoo     OdooConfig `yaml:"odoo"`
	LogLevel string     `yaml:"log_level"`
}

// OdooConfig defines the Odoo connection settings. When URL, Database,
// and a credential are all present, the server connects at startup;
// otherwise the session is established via the odoo_authenticate tool.
type OdooConfig struct {
	URL      string `yaml:"url"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// APIKey authenticates instead of Password (Odoo 14+).
	APIKey string `yaml:"api_key"`
	// TimeoutSec bounds a single request attempt (default 30).
	TimeoutSec int `yaml:"timeout_sec"`
	// MaxRetries is the total number of attempts per call (default 3).
	MaxRetries int `yaml:"max_retries"`
	// RetryDelaySec is the base backoff delay in seconds (default 1.0).
	RetryDelaySec float64 `yaml:"retry_delay_sec"`
	// InsecureSkipTLS disables TLS certificate verification, for
	// self-hosted instances with self-signed certificates.
	InsecureSkipTLS bool `yaml:"insecure_skip_tls"`
}

// HasCredentials reports whether the config carries enough to
// establish a session without the authenticate tool.
func (o OdooConfig) HasCredentials() bool {
	return o.URL != "" && o.Database != "" && (o.Password != "" || o.APIKey != "")
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Odoo: OdooConfig{
			TimeoutSec:    30,
			MaxRetries:    3,
			RetryDelaySec: 1.0,
		},
	}
}

// ApplyEnv overlays ODOO_* environment variables onto cfg. Environment
// values win over file values so containerized deployments can
// configure the server without a config file at all.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("ODOO_URL"); v != "" {
		cfg.Odoo.URL = v
	}
	if v := os.Getenv("ODOO_DATABASE"); v != "" {
		cfg.Odoo.Database = v
	}
	if v := os.Getenv("ODOO_USERNAME"); v != "" {
		cfg.Odoo.Username = v
	}
	if v := os.Getenv("ODOO_PASSWORD"); v != "" {
		cfg.Odoo.Password = v
	}
	if v := os.Getenv("ODOO_API_KEY"); v != "" {
		cfg.Odoo.APIKey = v
	}
	if v := os.Getenv("ODOO_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ODOO_TIMEOUT: %w", err)
		}
		cfg.Odoo.TimeoutSec = n
	}
	if v := os.Getenv("ODOO_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ODOO_MAX_RETRIES: %w", err)
		}
		cfg.Odoo.MaxRetries = n
	}
	if v := os.Getenv("ODOO_RETRY_DELAY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ODOO_RETRY_DELAY: %w", err)
		}
		cfg.Odoo.RetryDelaySec = f
	}
	if v := os.Getenv("ODOO_MCP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}
