// Package config loads dira-lottery settings from YAML.
package config

import (
	"fmt"
	"time"

	"github.com/pfrederiksen/dira-lottery/internal/dira"
	"github.com/pfrederiksen/dira-lottery/internal/logger"
)

const (
	DefaultDataDir      = "~/.local/share/dira-lottery"
	DefaultRecords      = "records.json"
	DefaultLocalHousing = "local_housing.json"
	DefaultCache        = "subscribers_cache.json"
	DefaultRetryBackoff = time.Second
	DefaultLogLevel     = "info"
)

// Config is the root configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Aggregate AggregateConfig `yaml:"aggregate"`
	Data      DataConfig      `yaml:"data"`
	Log       LogConfig       `yaml:"log"`
}

// APIConfig holds Dira API settings.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	CallTimeout  time.Duration `yaml:"call_timeout"` // per fetch, on top of the HTTP timeout
	Retries      int           `yaml:"retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	CacheTTL     time.Duration `yaml:"cache_ttl"` // 0 disables the subscriber cache
}

// AggregateConfig holds batched fetch settings.
type AggregateConfig struct {
	FailurePolicy string `yaml:"failure_policy"` // fail_fast or collect
}

// DataConfig names the input and export files, relative to Dir unless absolute.
type DataConfig struct {
	Dir          string `yaml:"dir"`
	Records      string `yaml:"records"`
	LocalHousing string `yaml:"local_housing"`
	Export       string `yaml:"export"`
	Cache        string `yaml:"cache"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = dira.DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = dira.DefaultTimeout
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}
	if c.Aggregate.FailurePolicy == "" {
		c.Aggregate.FailurePolicy = string(dira.FailFast)
	}
	if c.Data.Dir == "" {
		c.Data.Dir = DefaultDataDir
	}
	if c.Data.Records == "" {
		c.Data.Records = DefaultRecords
	}
	if c.Data.LocalHousing == "" {
		c.Data.LocalHousing = DefaultLocalHousing
	}
	if c.Data.Cache == "" {
		c.Data.Cache = DefaultCache
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate checks the config for values the tool cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout < 0 || c.API.CallTimeout < 0 {
		return fmt.Errorf("api timeouts must not be negative")
	}
	if c.API.CacheTTL < 0 {
		return fmt.Errorf("api.cache_ttl must not be negative, got %v", c.API.CacheTTL)
	}
	if c.API.Retries < 0 {
		return fmt.Errorf("api.retries must not be negative, got %d", c.API.Retries)
	}
	if _, err := dira.ParseFailurePolicy(c.Aggregate.FailurePolicy); err != nil {
		return fmt.Errorf("aggregate.failure_policy: %w", err)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
