package config_test

import (
	"fmt"
	"time"

	"github.com/actionsum/appctl/internal/config"
)

// Example of creating a default configuration
func ExampleDefault() {
	cfg := config.Default()
	fmt.Println("Timeout:", cfg.Launch.Timeout)
	fmt.Println("Poll Interval:", cfg.Launch.PollInterval)
	fmt.Println("Titles Only:", cfg.Windows.TitlesOnly)
	// Output:
	// Timeout: 20s
	// Poll Interval: 1s
	// Titles Only: true
}

// Example of setting poll interval with validation
func ExampleConfig_SetPollInterval() {
	cfg := config.Default()

	// Valid interval
	if err := cfg.SetPollInterval(250 * time.Millisecond); err != nil {
		fmt.Println("Error:", err)
	} else {
		fmt.Println("Poll interval set to:", cfg.Launch.PollInterval)
	}

	// Invalid interval (too low)
	if err := cfg.SetPollInterval(time.Millisecond); err != nil {
		fmt.Println("Error:", err)
	}

	// Output:
	// Poll interval set to: 250ms
	// Error: poll interval cannot be less than 10ms
}

// Example of validating configuration
func ExampleConfig_Validate() {
	cfg := config.Default()

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	} else {
		fmt.Println("Configuration is valid")
	}

	cfg.Log.Level = "loud"
	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	}

	// Output:
	// Configuration is valid
	// Invalid config: invalid log level "loud"
}
