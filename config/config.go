package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	// Backend settings
	Backend struct {
		URL            string        `yaml:"url"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"backend"`

	// Scan poll settings
	Poll struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"poll"`

	// Cache settings for playlist downloads
	Cache struct {
		Dir string        `yaml:"dir"`
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"cache"`

	// Local scan history settings
	History struct {
		Path      string        `yaml:"path"`
		Retention time.Duration `yaml:"retention"`
	} `yaml:"history"`

	// Metrics listener settings
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Address string `yaml:"address"`
	} `yaml:"metrics"`

	// Resilience settings (embedded)
	Resilience ResilienceConfig `yaml:"resilience"`
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errors []string

	// Validate backend settings
	if c.Backend.URL == "" {
		errors = append(errors, "Backend URL is required")
	}
	if c.Backend.RequestTimeout <= 0 {
		errors = append(errors, "Backend request timeout must be positive")
	}

	// Validate poll settings
	if c.Poll.Interval <= 0 {
		errors = append(errors, "Poll interval must be positive")
	}

	// Validate cache settings
	if c.Cache.Dir == "" {
		errors = append(errors, "Cache directory is required")
	}
	if c.Cache.TTL <= 0 {
		errors = append(errors, "Cache TTL must be positive")
	}

	// Validate history settings
	if c.History.Path == "" {
		errors = append(errors, "History database path is required")
	}
	if c.History.Retention <= 0 {
		errors = append(errors, "History retention must be positive")
	}

	// Validate metrics settings
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		errors = append(errors, "Metrics address is required when metrics are enabled")
	}

	// Validate resilience config
	if err := c.Resilience.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("Resilience config: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	// Backend defaults
	cfg.Backend.URL = "http://127.0.0.1:8000"
	cfg.Backend.RequestTimeout = 15 * time.Second

	// Poll defaults
	cfg.Poll.Interval = time.Second

	// Cache and history defaults live under the user cache directory
	base := userStateDir()
	cfg.Cache.Dir = filepath.Join(base, "cache")
	cfg.Cache.TTL = time.Hour
	cfg.History.Path = filepath.Join(base, "history.db")
	cfg.History.Retention = 30 * 24 * time.Hour

	// Metrics defaults
	cfg.Metrics.Enabled = false
	cfg.Metrics.Address = "127.0.0.1:9090"

	// Resilience defaults
	cfg.Resilience = *DefaultResilienceConfig()

	return cfg
}

// userStateDir returns the per-user base directory for cache and history
// files, falling back to the system temp directory
func userStateDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "iptv-console")
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load loads configuration from a file (if provided) and applies environment variable overrides
func Load() (*Config, error) {
	// Get config file path from flag or environment variable
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	// Try to load from file if it exists
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		// File doesn't exist, use defaults
		cfg = Default()
	}

	// Apply environment variable overrides
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	// Backend settings
	if val := os.Getenv("BACKEND_URL"); val != "" {
		cfg.Backend.URL = val
	}
	if val := os.Getenv("BACKEND_TIMEOUT"); val != "" {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
		}
		if duration <= 0 {
			return fmt.Errorf("BACKEND_TIMEOUT must be positive")
		}
		cfg.Backend.RequestTimeout = duration
	}

	// Poll settings
	if val := os.Getenv("POLL_INTERVAL"); val != "" {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid POLL_INTERVAL format (expected duration like '1s', '500ms'): %w", err)
		}
		if duration <= 0 {
			return fmt.Errorf("POLL_INTERVAL must be positive, got: %s", val)
		}
		cfg.Poll.Interval = duration
	}

	// Cache settings
	if val := os.Getenv("CACHE_DIR"); val != "" {
		// Normalize to absolute path
		absPath, err := validateCacheDir(val)
		if err != nil {
			return err
		}
		cfg.Cache.Dir = absPath
	}
	if val := os.Getenv("CACHE_TTL"); val != "" {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid CACHE_TTL format (expected duration like '1h', '30m'): %w", err)
		}
		if duration <= 0 {
			return fmt.Errorf("CACHE_TTL must be positive, got: %s", val)
		}
		cfg.Cache.TTL = duration
	}

	// History settings
	if val := os.Getenv("HISTORY_DB_PATH"); val != "" {
		cfg.History.Path = val
	}
	if val := os.Getenv("HISTORY_RETENTION"); val != "" {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid HISTORY_RETENTION: %w", err)
		}
		if duration <= 0 {
			return fmt.Errorf("HISTORY_RETENTION must be positive")
		}
		cfg.History.Retention = duration
	}

	// Metrics settings
	if val := os.Getenv("METRICS_ENABLED"); val != "" {
		cfg.Metrics.Enabled = val == "true" || val == "1"
	}
	if val := os.Getenv("METRICS_ADDRESS"); val != "" {
		cfg.Metrics.Address = val
	}

	// Resilience settings (use existing LoadFromEnv logic)
	resCfg, err := LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load resilience config: %w", err)
	}
	cfg.Resilience = *resCfg

	return nil
}

// validateCacheDir validates and normalizes the cache directory path
func validateCacheDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("cache directory cannot be empty")
	}

	// Ensure cache directory is an absolute path
	if !filepath.IsAbs(dir) {
		absPath, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve absolute path for cache dir: %w", err)
		}
		return absPath, nil
	}

	return dir, nil
}

// Print outputs the configuration to stdout
func (c *Config) Print() {
	fmt.Printf("backendUrl: %v\n", c.Backend.URL)
	fmt.Printf("backendTimeout: %v\n", c.Backend.RequestTimeout)
	fmt.Printf("pollInterval: %v\n", c.Poll.Interval)
	fmt.Printf("cacheDir: %v\n", c.Cache.Dir)
	fmt.Printf("cacheTTL: %v\n", c.Cache.TTL)
	fmt.Printf("historyPath: %v\n", c.History.Path)
	fmt.Printf("historyRetention: %v\n", c.History.Retention)
	fmt.Printf("metricsEnabled: %v\n", c.Metrics.Enabled)
	if c.Metrics.Enabled {
		fmt.Printf("metricsAddress: %v\n", c.Metrics.Address)
	}
	fmt.Printf("logLevel: %v\n", c.Resilience.LogLevel)
}
