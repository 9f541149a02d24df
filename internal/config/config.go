// Package config provides centralized configuration management for ceker.
// Values are layered: viper defaults, an optional YAML config file, then
// CEKER_-prefixed environment variables.
package config

import "time"

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig  `mapstructure:"server"`
	Store     StoreConfig   `mapstructure:"store"`
	Cache     CacheConfig   `mapstructure:"cache"`
	Scanner   ScannerConfig `mapstructure:"scanner"`
	Whois     WhoisConfig   `mapstructure:"whois"`
	Probe     ProbeConfig   `mapstructure:"probe"`
	Preview   PreviewConfig `mapstructure:"preview"`
	Notify    NotifyConfig  `mapstructure:"notify"`
	Logging   LoggingConfig `mapstructure:"logging"`
	Metrics   MetricsConfig `mapstructure:"metrics"`
	BotAPIKey string        `mapstructure:"bot_api_key"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	BaseURL         string        `mapstructure:"base_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso.
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// CacheConfig contains reputation-cache configuration.
type CacheConfig struct {
	VerdictTTL time.Duration `mapstructure:"verdict_ttl"`
}

// ScannerConfig contains the URL Scanner client configuration.
type ScannerConfig struct {
	AccountID    string        `mapstructure:"account_id"`
	APIToken     string        `mapstructure:"api_token"`
	BaseURL      string        `mapstructure:"base_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxWait      time.Duration `mapstructure:"max_wait"`
}

// WhoisConfig contains the registration-lookup client configuration.
type WhoisConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ProbeConfig contains the reachability prober configuration.
type ProbeConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// PreviewConfig contains screenshot-capture configuration.
type PreviewConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	ChromePath string        `mapstructure:"chrome_path"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Dir        string        `mapstructure:"dir"`
}

// NotifyConfig contains the Teams webhook notification sink configuration.
type NotifyConfig struct {
	TeamsWebhookURL string `mapstructure:"teams_webhook_url"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level: debug, info, warn, error.
	Level string `mapstructure:"level"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
