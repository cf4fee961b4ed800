// Package config loads cfops configuration from defaults, .cfops.yaml, and
// CFOPS_* environment variables (in increasing precedence). Flags override on
// top of this in the command layer.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for cfops
type Config struct {
	Contentful ContentfulConfig `mapstructure:"contentful"`
	Pager      PagerConfig      `mapstructure:"pager"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Report     ReportConfig     `mapstructure:"report"`
	LogLevel   string           `mapstructure:"log_level"`
}

// ContentfulConfig holds management-API connection settings
type ContentfulConfig struct {
	Token             string  `mapstructure:"token"`
	SpaceID           string  `mapstructure:"space_id"`
	EnvironmentID     string  `mapstructure:"environment_id"`
	BaseURL           string  `mapstructure:"base_url"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// PagerConfig holds listing window settings
type PagerConfig struct {
	PageSize    int `mapstructure:"page_size"`
	PageDelayMS int `mapstructure:"page_delay_ms"`
}

// RetryConfig holds rate-limit backoff settings
type RetryConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
	BaseDelayMS int `mapstructure:"base_delay_ms"`
	MaxDelayMS  int `mapstructure:"max_delay_ms"`
}

// ReportConfig holds run-report output settings
type ReportConfig struct {
	Dir string `mapstructure:"dir"`
}

// Timeout returns the HTTP timeout as a duration.
func (c ContentfulConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PageDelay returns the inter-page delay as a duration.
func (c PagerConfig) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMS) * time.Millisecond
}

// BaseDelay returns the initial backoff delay as a duration.
func (c RetryConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMS) * time.Millisecond
}

// MaxDelay returns the backoff delay cap as a duration.
func (c RetryConfig) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelayMS) * time.Millisecond
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("contentful.base_url", "https://api.contentful.com")
	v.SetDefault("contentful.environment_id", "master")
	v.SetDefault("contentful.timeout_seconds", 30)
	v.SetDefault("contentful.requests_per_second", 7.0)
	v.SetDefault("pager.page_size", 100)
	v.SetDefault("pager.page_delay_ms", 200)
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.base_delay_ms", 1000)
	v.SetDefault("retry.max_delay_ms", 30000)
	v.SetDefault("report.dir", "reports")
	v.SetDefault("log_level", "info")
}

// Load reads configuration from .cfops.yaml (cwd, then home) and the
// environment. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(".cfops")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	v.SetEnvPrefix("CFOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The vendor-standard token variable works without the CFOPS_ prefix.
	_ = v.BindEnv("contentful.token", "CFOPS_CONTENTFUL_TOKEN", "CONTENTFUL_MANAGEMENT_TOKEN")
	// No default exists for the space id, so Unmarshal only sees the env
	// value through an explicit binding.
	_ = v.BindEnv("contentful.space_id")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the settings required to reach the management API are present.
func (c *Config) Validate() error {
	if c.Contentful.Token == "" {
		return fmt.Errorf("management token is not set (CONTENTFUL_MANAGEMENT_TOKEN or contentful.token)")
	}
	if c.Contentful.SpaceID == "" {
		return fmt.Errorf("space id is not set (--space-id or contentful.space_id)")
	}
	if c.Contentful.EnvironmentID == "" {
		return fmt.Errorf("environment id is not set (--env-id or contentful.environment_id)")
	}
	if c.Pager.PageSize <= 0 || c.Pager.PageSize > 1000 {
		return fmt.Errorf("pager.page_size must be between 1 and 1000, got %d", c.Pager.PageSize)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
