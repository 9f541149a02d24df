package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// EnvPrefix is the environment variable prefix for all settings
// (CEKER_SERVER_PORT, CEKER_SCANNER_API_TOKEN, ...).
const EnvPrefix = "CEKER"

// SetDefaults installs the baseline configuration into viper. Call before
// ReadInConfig so file and environment layers override it.
func SetDefaults() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "10s")

	viper.SetDefault("store.driver", "libsql")
	viper.SetDefault("store.path", "./data/ceker.db")
	viper.SetDefault("store.url", "")
	viper.SetDefault("store.auth_token", "")

	viper.SetDefault("cache.verdict_ttl", "72h")

	viper.SetDefault("scanner.account_id", "")
	viper.SetDefault("scanner.api_token", "")
	viper.SetDefault("scanner.base_url", "https://api.cloudflare.com/client/v4")
	viper.SetDefault("scanner.poll_interval", "2s")
	viper.SetDefault("scanner.max_wait", "60s")

	viper.SetDefault("whois.timeout", "5s")
	viper.SetDefault("probe.timeout", "5s")

	viper.SetDefault("preview.enabled", true)
	viper.SetDefault("preview.chrome_path", "")
	viper.SetDefault("preview.timeout", "20s")
	viper.SetDefault("preview.dir", "./data/screenshots")

	viper.SetDefault("notify.teams_webhook_url", "")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("metrics.enabled", true)

	viper.SetDefault("bot_api_key", "")
}

// Load unmarshals the merged viper state into a typed Config and stores it
// as the process configuration.
func Load() (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = "./data/ceker.db"
	}

	setConfig(cfg)
	return cfg, nil
}

// Get returns the current application configuration (thread-safe).
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}
