package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default and file values
func LoadFromEnv(cfg *Config) {
	// Launch configuration
	if timeout := os.Getenv("APPCTL_TIMEOUT"); timeout != "" {
		if seconds, err := strconv.Atoi(timeout); err == nil && seconds >= 0 {
			cfg.Launch.Timeout = time.Duration(seconds) * time.Second
		}
	}

	if pollInterval := os.Getenv("APPCTL_POLL_INTERVAL"); pollInterval != "" {
		if ms, err := strconv.Atoi(pollInterval); err == nil && ms > 0 {
			interval := time.Duration(ms) * time.Millisecond
			if interval >= cfg.Launch.MinPollInterval && interval <= cfg.Launch.MaxPollInterval {
				cfg.Launch.PollInterval = interval
			}
		}
	}

	if lockDir := os.Getenv("APPCTL_LOCK_DIR"); lockDir != "" {
		cfg.Launch.LockDir = lockDir
	}

	// Window configuration
	if titlesOnly := os.Getenv("APPCTL_TITLES_ONLY"); titlesOnly != "" {
		if val, err := strconv.ParseBool(titlesOnly); err == nil {
			cfg.Windows.TitlesOnly = val
		}
	}

	// Journal configuration
	if journal := os.Getenv("APPCTL_JOURNAL"); journal != "" {
		if val, err := strconv.ParseBool(journal); err == nil {
			cfg.Journal.Enabled = val
		}
	}

	if dbPath := os.Getenv("APPCTL_DB_PATH"); dbPath != "" {
		cfg.Journal.Path = dbPath
	}

	// Log configuration
	if level := os.Getenv("APPCTL_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if jsonLog := os.Getenv("APPCTL_LOG_JSON"); jsonLog != "" {
		if val, err := strconv.ParseBool(jsonLog); err == nil {
			cfg.Log.JSON = val
		}
	}
}

// New creates a new Config with default values and loads from environment
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}

// Load builds the configuration from defaults, the TOML file at path
// (skipped when it does not exist) and the environment, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" && FileExists(path) {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return nil, err
		}
		if err := ApplyFileConfig(cfg, fc); err != nil {
			return nil, err
		}
	}
	LoadFromEnv(cfg)
	return cfg, nil
}
