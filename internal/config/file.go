package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Launch struct {
		Timeout      string `toml:"timeout"`
		PollInterval string `toml:"poll_interval"`
		LockDir      string `toml:"lock_dir"`
	} `toml:"launch"`
	Windows struct {
		TitlesOnly *bool `toml:"titles_only"`
	} `toml:"windows"`
	Journal struct {
		Enabled *bool  `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"journal"`
	Log struct {
		Level string `toml:"level"`
		JSON  *bool  `toml:"json"`
	} `toml:"log"`
	Versions map[string]string `toml:"versions"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, errors.Wrap(err, "failed to read config file")
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, errors.Wrapf(err, "failed to parse %s", path)
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.config/appctl/config.toml, or "" when the
// home directory cannot be determined.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".config", "appctl", "config.toml")
	}
	return ""
}

// ApplyFileConfig copies every value set in fc onto cfg.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if err := setDuration("launch.timeout", fc.Launch.Timeout, &cfg.Launch.Timeout); err != nil {
		return err
	}
	if err := setDuration("launch.poll_interval", fc.Launch.PollInterval, &cfg.Launch.PollInterval); err != nil {
		return err
	}
	if fc.Launch.LockDir != "" {
		cfg.Launch.LockDir = fc.Launch.LockDir
	}
	if fc.Windows.TitlesOnly != nil {
		cfg.Windows.TitlesOnly = *fc.Windows.TitlesOnly
	}
	if fc.Journal.Enabled != nil {
		cfg.Journal.Enabled = *fc.Journal.Enabled
	}
	if fc.Journal.Path != "" {
		cfg.Journal.Path = fc.Journal.Path
	}
	if fc.Log.Level != "" {
		cfg.Log.Level = fc.Log.Level
	}
	if fc.Log.JSON != nil {
		cfg.Log.JSON = *fc.Log.JSON
	}
	for exe, v := range fc.Versions {
		if cfg.Versions == nil {
			cfg.Versions = make(map[string]string, len(fc.Versions))
		}
		cfg.Versions[exe] = v
	}
	return nil
}

func setDuration(key, value string, dst *time.Duration) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = d
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
