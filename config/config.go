package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ccollins476ad/imker/retry"
	"github.com/ccollins476ad/imker/wiki"
	"gopkg.in/yaml.v3"
)

// Config holds the settings that are fixed for the lifetime of a run.
type Config struct {
	Host        string
	Scheme      string
	APIPath     string
	UserAgent   string
	MaxLag      time.Duration
	MaxLagWaits int
	Timeout     time.Duration
	Retry       RetryConfig
}

// RetryConfig defines retry behavior for remote operations.
type RetryConfig struct {
	MaxFails int           // Attempts per operation, including the first.
	Sleep    time.Duration // Fixed pause between attempts.
}

// Default returns the settings for Wikimedia Commons.
func Default() Config {
	opts := wiki.DefaultOptions()
	return Config{
		Host:        opts.Host,
		Scheme:      opts.Scheme,
		APIPath:     opts.APIPath,
		UserAgent:   opts.UserAgent,
		MaxLag:      opts.MaxLag,
		MaxLagWaits: opts.MaxLagWaits,
		Timeout:     opts.Timeout,
		Retry: RetryConfig{
			MaxFails: 3,
			Sleep:    30 * time.Second,
		},
	}
}

// yamlConfig mirrors Config with durations as strings ("30s", "1m").
type yamlConfig struct {
	Host        string          `yaml:"host"`
	Scheme      string          `yaml:"scheme"`
	APIPath     string          `yaml:"api_path"`
	UserAgent   string          `yaml:"user_agent"`
	MaxLag      string          `yaml:"max_lag"`
	MaxLagWaits int             `yaml:"max_lag_waits"`
	Timeout     string          `yaml:"timeout"`
	Retry       yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	MaxFails int    `yaml:"max_fails"`
	Sleep    string `yaml:"sleep"`
}

// LoadFromFile reads a YAML file and applies the settings it contains on top
// of Default(). Keys that are absent keep their default.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Host != "" {
		cfg.Host = yc.Host
	}
	if yc.Scheme != "" {
		cfg.Scheme = yc.Scheme
	}
	if yc.APIPath != "" {
		cfg.APIPath = yc.APIPath
	}
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	if yc.MaxLagWaits != 0 {
		cfg.MaxLagWaits = yc.MaxLagWaits
	}
	if yc.Retry.MaxFails != 0 {
		cfg.Retry.MaxFails = yc.Retry.MaxFails
	}

	durations := []struct {
		key string
		val string
		dst *time.Duration
	}{
		{"max_lag", yc.MaxLag, &cfg.MaxLag},
		{"timeout", yc.Timeout, &cfg.Timeout},
		{"retry.sleep", yc.Retry.Sleep, &cfg.Retry.Sleep},
	}
	for _, d := range durations {
		if d.val == "" {
			continue
		}
		v, err := time.ParseDuration(d.val)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("config: host is required")
	}
	if c.Scheme != "http" && c.Scheme != "https" {
		return fmt.Errorf("config: unsupported scheme %q", c.Scheme)
	}
	if c.MaxLag < 0 {
		return errors.New("config: max_lag must not be negative")
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	if c.Retry.MaxFails < 1 {
		return errors.New("config: retry.max_fails must be at least 1")
	}
	if c.Retry.Sleep < 0 {
		return errors.New("config: retry.sleep must not be negative")
	}
	return nil
}

// WikiOptions returns the client options described by c.
func (c Config) WikiOptions() wiki.Options {
	return wiki.Options{
		Host:        c.Host,
		Scheme:      c.Scheme,
		APIPath:     c.APIPath,
		UserAgent:   c.UserAgent,
		MaxLag:      c.MaxLag,
		MaxLagWaits: c.MaxLagWaits,
		Timeout:     c.Timeout,
	}
}

// Budget returns the retry budget described by c.
func (c Config) Budget() retry.Budget {
	return retry.Budget{
		MaxFails: c.Retry.MaxFails,
		Sleep:    c.Retry.Sleep,
	}
}
