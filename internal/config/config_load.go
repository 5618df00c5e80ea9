package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DefaultTimezone: "UTC",
		Database: DatabaseConfig{
			MaxOpenConns: 10,
		},
		Gateway: GatewayConfig{
			DefaultMaxMessagesPerMinute: 20,
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars. A missing
// file is not an error: defaults plus env overrides are returned instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config. Env vars take
// precedence over file values and are the only source for secrets.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	envStr("DISCORD_BOT_TOKEN", &c.Discord.Token)
	envStr("BEACON_POSTGRES_DSN", &c.Database.PostgresDSN)
	envStr("BEACON_DEFAULT_TIMEZONE", &c.DefaultTimezone)
	envStr("BEACON_SCHEDULER_TICK_INTERVAL", &c.Scheduler.TickInterval)
}

// Save writes the config to a JSON file. Secrets (json:"-" fields) are
// never serialized, keeping tokens and DSNs out of the config file
// entirely.
func Save(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0600)
}
