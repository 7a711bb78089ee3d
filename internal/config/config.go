package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all application configuration
type Config struct {
	// Launch and window wait behaviour
	Launch LaunchConfig

	// Window enumeration configuration
	Windows WindowsConfig

	// Event journal configuration
	Journal JournalConfig

	// Logging configuration
	Log LogConfig

	// Versions pins executable versions, keyed by full path or base name.
	// Used when the executable carries no readable version metadata.
	Versions map[string]string
}

// LaunchConfig holds start/wait timing and the launch lock
type LaunchConfig struct {
	Timeout         time.Duration // Bound for the process and the window wait each
	PollInterval    time.Duration // How often the process and window tables are re-read
	MinPollInterval time.Duration // Minimum allowed poll interval
	MaxPollInterval time.Duration // Maximum allowed poll interval
	LockDir         string        // Directory for per-executable launch locks, empty disables locking
}

// WindowsConfig holds window enumeration configuration
type WindowsConfig struct {
	TitlesOnly bool // Exclude untitled windows from general listings
}

// JournalConfig holds the event journal configuration
type JournalConfig struct {
	Enabled bool
	Path    string // Path to SQLite database file
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string
	JSON  bool
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Launch: LaunchConfig{
			Timeout:         20 * time.Second,
			PollInterval:    1 * time.Second,
			MinPollInterval: 10 * time.Millisecond,
			MaxPollInterval: 60 * time.Second,
			LockDir:         "",
		},
		Windows: WindowsConfig{
			TitlesOnly: true,
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    "", // Empty means use default ~/.config/appctl/appctl.db
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
		Versions: map[string]string{},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Launch.Timeout < 0 {
		return fmt.Errorf("launch timeout cannot be negative")
	}

	if c.Launch.PollInterval < c.Launch.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Launch.PollInterval, c.Launch.MinPollInterval)
	}

	if c.Launch.PollInterval > c.Launch.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Launch.PollInterval, c.Launch.MaxPollInterval)
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	for exe, v := range c.Versions {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("empty version for %s", exe)
		}
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Launch.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Launch.MinPollInterval)
	}
	if interval > c.Launch.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Launch.MaxPollInterval)
	}
	c.Launch.PollInterval = interval
	return nil
}

// SetTimeout sets the launch timeout with validation
func (c *Config) SetTimeout(timeout time.Duration) error {
	if timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got %v", timeout)
	}
	c.Launch.Timeout = timeout
	return nil
}

// GetTimeoutSeconds returns the launch timeout in seconds
func (c *Config) GetTimeoutSeconds() int64 {
	return int64(c.Launch.Timeout.Seconds())
}

// String returns a string representation of the config
func (c *Config) String() string {
	pins := make([]string, 0, len(c.Versions))
	for exe, v := range c.Versions {
		pins = append(pins, exe+"="+v)
	}
	sort.Strings(pins)

	return fmt.Sprintf(`Configuration:
  Launch:
    Timeout: %v
    Poll Interval: %v
    Lock Dir: %s
  Windows:
    Titles Only: %v
  Journal:
    Enabled: %v
    Path: %s
  Log:
    Level: %s
    JSON: %v
  Versions: %s`,
		c.Launch.Timeout,
		c.Launch.PollInterval,
		c.Launch.LockDir,
		c.Windows.TitlesOnly,
		c.Journal.Enabled,
		c.Journal.Path,
		c.Log.Level,
		c.Log.JSON,
		strings.Join(pins, ", "),
	)
}
